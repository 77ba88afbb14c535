package compat

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/washb22/gunghabnote/internal/completion"
)

//go:embed prompt.md
var systemPrompt string

const (
	DefaultMaxTokens   = 150
	DefaultTemperature = float32(0.7)
)

// BuildPrompt renders the system instruction and the user block for req.
// Non-positive maxTokens falls back to DefaultMaxTokens.
func BuildPrompt(req Request, maxTokens int, temperature float32) completion.Prompt {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var b strings.Builder
	b.WriteString("다음 두 사람의 궁합을 분석해주세요:\n\n")
	b.WriteString(personLine(req.MyName, req.MyGender, req.MyBirthDate, req.MyBirthTime))
	b.WriteString("\n")
	b.WriteString(personLine(req.PartnerName, req.PartnerGender, req.PartnerBirthDate, req.PartnerBirthTime))
	b.WriteString("\n\n")
	b.WriteString("이 두 사람의 생년월일을 바탕으로 개인화된 궁합을 분석하여, 한 줄로 답변해주세요.\n")
	b.WriteString("전문 용어 없이 누구나 이해할 수 있는 따뜻한 말로 해주세요.\n\n")
	b.WriteString(`형식: "궁합 XX% - [한 줄 메시지]"`)

	return completion.Prompt{
		System:      strings.TrimSpace(systemPrompt),
		User:        b.String(),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

func personLine(name, gender, birthDate, birthTime string) string {
	if t := strings.TrimSpace(birthTime); t != "" {
		return fmt.Sprintf("%s (%s, %s생, %s 출생)", name, gender, birthDate, t)
	}
	return fmt.Sprintf("%s (%s, %s생)", name, gender, birthDate)
}
