// Package mindreader serves the daily "what are they thinking" reading.
package mindreader

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"
)

// Relationship is the user's relation to the person being read.
type Relationship string

const (
	RelationshipCrush       Relationship = "crush"
	RelationshipFriend      Relationship = "friend"
	RelationshipDating      Relationship = "dating"
	RelationshipComplicated Relationship = "complicated"
)

// Validation errors carry the text shown to users.
var (
	ErrMissingPartner      = errors.New("상대방 이름을 입력해주세요")
	ErrMissingRelationship = errors.New("관계를 선택해주세요")
	ErrMissingSituation    = errors.New("오늘의 상황을 입력해주세요")
)

// UsageDateLayout formats the day a reading was issued.
const UsageDateLayout = "2006-01-02"

type Request struct {
	PartnerName    string       `json:"partnerName"`
	Relationship   Relationship `json:"relationship"`
	TodaySituation string       `json:"todaySituation"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.PartnerName) == "" {
		return ErrMissingPartner
	}
	switch Relationship(strings.TrimSpace(string(r.Relationship))) {
	case RelationshipCrush, RelationshipFriend, RelationshipDating, RelationshipComplicated:
	default:
		return ErrMissingRelationship
	}
	if strings.TrimSpace(r.TodaySituation) == "" {
		return ErrMissingSituation
	}
	return nil
}

type Reading struct {
	Prediction string `json:"prediction"`
	Detail     string `json:"detail"`
	Advice     string `json:"advice"`
	Percentage int    `json:"percentage"`
	// UsageDate lets the client keep its one-reading-per-day gate.
	UsageDate string `json:"usageDate"`
}

var readings = []Reading{
	{
		Prediction: "지금 당신을 많이 생각하고 있어요 💕",
		Detail:     "최근 당신과의 시간들이 계속 머릿속에 맴돌고 있어요. 특히 오늘 있었던 일로 인해 당신에 대한 관심이 더욱 커졌답니다.",
		Advice:     "이런 때일수록 자연스럽게 연락해보세요. 작은 관심 표현이 큰 변화를 만들 수 있어요.",
		Percentage: 78,
	},
	{
		Prediction: "친구로서의 감정이 조금씩 변화하고 있어요 🌙",
		Detail:     "아직 확실하지 않지만, 당신을 바라보는 시선이 예전과는 다르다는 걸 스스로도 느끼고 있어요. 혼란스럽지만 나쁘지 않은 감정이에요.",
		Advice:     "급하게 서두르지 마세요. 자연스러운 만남을 늘려가면서 서로를 더 알아가는 시간이 필요해요.",
		Percentage: 65,
	},
	{
		Prediction: "지금은 다른 일에 집중하고 있어서 연애 생각이 별로 없어요 💼",
		Detail:     "개인적인 목표나 일에 몰두하고 있는 시기예요. 당신이 나쁘다는 게 아니라, 지금은 자신에게 집중하고 싶은 마음이 더 큰 상태랍니다.",
		Advice:     "지금은 거리를 두고 응원하는 마음으로 지켜봐 주세요. 때로는 기다림이 가장 큰 사랑이에요.",
		Percentage: 42,
	},
	{
		Prediction: "당신에 대한 호감을 느끼지만 표현을 망설이고 있어요 ✨",
		Detail:     "마음은 있지만 거절당할까봐, 지금의 관계가 깨질까봐 걱정하고 있어요. 신중한 성격이라 더욱 신경쓰이는 것 같아요.",
		Advice:     "먼저 편안한 분위기를 만들어주세요. 부담스럽지 않은 선에서 관심을 표현해보는 것이 좋겠어요.",
		Percentage: 71,
	},
	{
		Prediction: "아직 마음의 준비가 안 된 것 같아요 🤍",
		Detail:     "과거의 상처나 개인적인 이유로 새로운 관계에 대해 조심스러워하고 있어요. 당신을 싫어하는 게 아니라 자신을 보호하려는 마음이 커요.",
		Advice:     "서두르지 말고 좋은 친구로 먼저 자리잡아 보세요. 신뢰가 쌓이면 마음도 천천히 열릴 거예요.",
		Percentage: 38,
	},
}

// Reader hands out pre-authored readings. It holds no per-user state.
type Reader struct {
	intn func(n int) int
	now  func() time.Time
}

// NewReader returns a Reader. Nil arguments select math/rand/v2 and time.Now.
func NewReader(intn func(n int) int, now func() time.Time) *Reader {
	if intn == nil {
		intn = rand.IntN
	}
	if now == nil {
		now = time.Now
	}
	return &Reader{intn: intn, now: now}
}

// Read validates req and returns one reading stamped with today's date.
func (r *Reader) Read(req Request) (*Reading, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	i := r.intn(len(readings))
	if i < 0 || i >= len(readings) {
		i = 0
	}

	reading := readings[i]
	reading.UsageDate = r.now().Format(UsageDateLayout)
	return &reading, nil
}
