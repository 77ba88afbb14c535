package compat

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	anonymousName = "익명"

	myNamePlaceholder      = "{{myName}}"
	partnerNamePlaceholder = "{{partnerName}}"
)

// Entry is one pre-authored (percentage, message) pair. Messages may contain
// {{myName}} and {{partnerName}} placeholders.
type Entry struct {
	Percentage int
	Message    string
}

// Line formats the entry the way the model is asked to answer.
func (e Entry) Line() string {
	return fmt.Sprintf("궁합 %d%% - %s", e.Percentage, e.Message)
}

// Render substitutes the request names, defaulting blanks to 익명.
func (e Entry) Render(myName, partnerName string) Entry {
	if strings.TrimSpace(myName) == "" {
		myName = anonymousName
	}
	if strings.TrimSpace(partnerName) == "" {
		partnerName = anonymousName
	}
	msg := strings.ReplaceAll(e.Message, myNamePlaceholder, myName)
	msg = strings.ReplaceAll(msg, partnerNamePlaceholder, partnerName)
	return Entry{Percentage: e.Percentage, Message: msg}
}

// corpus band populations encode the 35/45/10/5 target by repetition count.
var corpus = []Entry{
	// 30-50
	{43, "지금은 힘들어 보이지만 서로 이해하려 노력한다면 달라질 수 있어요. 구체적인 방법을 알면 어떨까요? 🌱"},
	{38, "솔직히 쉽지 않은 조합이지만, 사주 가이드를 따르면 변화가 있을 수 있어요 🤷‍♀️"},
	{47, "현재로선 어려워 보이지만 올바른 접근법을 안다면 또 모르는 일이에요 ⏰"},
	{41, "지금 상황은 복잡하지만, 정확한 타이밍을 안다면 기회가 있을 거예요 💫"},
	{35, "쉽지 않은 관계지만 사주에서 보여주는 길을 따르면 달라질 수 있어요 🗺️"},
	{49, "현실적으로 어렵지만 서로의 마음을 제대로 안다면 가능성이 보여요 💭"},
	{44, "지금은 거리가 있지만 올바른 방향을 안다면 가까워질 수 있을 거예요 🎯"},

	// 51-69
	{56, "뭔가 끌리긴 하는데 확신이 서지 않아서 더 알아봐야겠어요 🤔"},
	{62, "관심은 있지만 진짜 마음은 아직 확실하지 않은 것 같아요 💭"},
	{58, "첫인상은 나쁘지 않지만 깊은 마음은 좀 더 봐야 할듯해요 👀"},
	{65, "서로 다른 점이 많아서 알아가는 데 시간과 노력이 필요할 것 같아요 ⏳"},
	{53, "호기심은 있지만 실제 궁합이 어떨지 좀 더 자세히 봐야겠어요 🔍"},
	{67, "끌림은 있는데 서로 맞는 부분과 다른 부분을 더 알고 싶어요 ⚖️"},
	{59, "관심은 분명한데 진짜 잘 맞을지는 더 깊이 들여다봐야 할 것 같아요 🌊"},
	{64, "나쁘지 않은 인연이지만 중요한 포인트들을 더 확인해보고 싶어요 📍"},
	{68, "{{myName}}님과 {{partnerName}}님은 끌림은 있지만, 서로를 이해하는 방식이 조금 다를 수 있어요 💕"},

	// 70-79
	{75, "좋은 인연이지만 중요한 포인트들을 더 확인해볼 필요가 있어요 ✨"},
	{72, "두 분의 관계는 호기심으로 시작되지만 감정적 교감을 위해서는 시간이 필요해요 ✨"},

	// 80+
	{84, "서로의 리듬이 잘 맞는 편안한 인연이에요. 지금의 흐름을 잘 이어가 보세요 🍀"},
}

// Corpus returns a copy of the built-in fallback entries, unrendered.
func Corpus() []Entry {
	out := make([]Entry, len(corpus))
	copy(out, corpus)
	return out
}

// Selector picks fallback entries uniformly over the corpus.
type Selector struct {
	intn    func(n int) int
	entries []Entry
}

// NewSelector returns a Selector over the built-in corpus. A nil intn uses
// math/rand/v2, which is safe for concurrent use.
func NewSelector(intn func(n int) int) *Selector {
	if intn == nil {
		intn = rand.IntN
	}
	return &Selector{intn: intn, entries: corpus}
}

// Pick returns one entry rendered with the given names. It never fails.
func (s *Selector) Pick(myName, partnerName string) Entry {
	i := s.intn(len(s.entries))
	if i < 0 || i >= len(s.entries) {
		i = 0
	}
	return s.entries[i].Render(myName, partnerName)
}
