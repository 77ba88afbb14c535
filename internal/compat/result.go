package compat

const (
	ctaBandSixties   = "인연을 이어가는 방법은 사주에 맞는 접근부터 시작돼요."
	ctaBandSeventies = "지금 관계가 더 가까워지려면, 자세한 궁합에따른 접근이 필요합니다."
	ctaBelowFloor    = "상대사주에 맞는 접근법만 알아도, 완전히 달라질 수 있어요."
)

// CTA returns the call-to-action shown under a result. 80 and above has none.
func CTA(percentage int) string {
	switch {
	case percentage >= 80:
		return ""
	case percentage >= 70:
		return ctaBandSeventies
	case percentage >= 60:
		return ctaBandSixties
	default:
		return ctaBelowFloor
	}
}

// Result is the assembled compatibility answer.
type Result struct {
	LoveStyle   string `json:"loveStyle"`
	MyName      string `json:"myName"`
	PartnerName string `json:"partnerName"`
	Percentage  int    `json:"percentage"`
	Message     string `json:"message"`
	CTAMessage  string `json:"ctaMessage"`
	Fallback    bool   `json:"fallback,omitempty"`
}

func assemble(req Request, loveStyle string, percentage int, message string, fallback bool) *Result {
	percentage = Clamp(percentage)
	return &Result{
		LoveStyle:   loveStyle,
		MyName:      req.MyName,
		PartnerName: req.PartnerName,
		Percentage:  percentage,
		Message:     message,
		CTAMessage:  CTA(percentage),
		Fallback:    fallback,
	}
}
