package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/compat"
	"github.com/washb22/gunghabnote/internal/logger"
)

const (
	PromptMale   = "남자"
	PromptFemale = "여자"
	PromptAgain  = "다시 보기"
	PromptQuit   = "종료"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask for two people and print their compatibility",
	Run: func(_ *cobra.Command, _ []string) {
		if err := analyze(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyze() error {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.Completion, logger)
	if err != nil {
		logger.Fatal("building a completion backend", zap.Error(err))
	}
	analyzer := newAnalyzer(completer, config.Completion, nil, logger)

	req, err := askRequest()
	if err != nil {
		return err
	}

	for {
		result, err := analyzer.Analyze(ctx, req)
		if err != nil {
			return err
		}
		printResult(result)

		next := promptui.Select{
			Label: "계속할까요?",
			Items: []string{PromptAgain, PromptQuit},
		}
		_, action, err := next.Run()
		if err != nil || action == PromptQuit {
			return nil
		}
	}
}

func askRequest() (compat.Request, error) {
	var req compat.Request
	var err error

	fields := []struct {
		label    string
		target   *string
		validate promptui.ValidateFunc
	}{
		{"내 이름", &req.MyName, required},
		{"내 생년월일 (YYYY-MM-DD)", &req.MyBirthDate, birthDate},
		{"내 태어난 시간 (HH:MM, 모르면 비워두세요)", &req.MyBirthTime, birthTime},
		{"상대 이름", &req.PartnerName, required},
		{"상대 생년월일 (YYYY-MM-DD)", &req.PartnerBirthDate, birthDate},
		{"상대 태어난 시간 (HH:MM, 모르면 비워두세요)", &req.PartnerBirthTime, birthTime},
	}

	for i, field := range fields {
		p := promptui.Prompt{Label: field.label, Validate: field.validate}
		if *field.target, err = p.Run(); err != nil {
			return req, err
		}

		// Gender follows each person's birth time.
		switch i {
		case 2:
			if req.MyGender, err = askGender("내 성별"); err != nil {
				return req, err
			}
		case 5:
			if req.PartnerGender, err = askGender("상대 성별"); err != nil {
				return req, err
			}
		}
	}

	return req, nil
}

func askGender(label string) (string, error) {
	s := promptui.Select{Label: label, Items: []string{PromptMale, PromptFemale}}
	_, gender, err := s.Run()
	return gender, err
}

func required(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("값을 입력해주세요")
	}
	return nil
}

func birthDate(input string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(input)); err != nil {
		return errors.New("YYYY-MM-DD 형식으로 입력해주세요")
	}
	return nil
}

func birthTime(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if _, err := time.Parse("15:04", input); err != nil {
		return errors.New("HH:MM 형식으로 입력해주세요")
	}
	return nil
}

func printResult(result *compat.Result) {
	fmt.Printf("\n💕 %s ♥ %s\n", result.MyName, result.PartnerName)
	fmt.Printf("궁합 %d%%\n%s\n", result.Percentage, result.Message)
	if result.CTAMessage != "" {
		fmt.Printf("\n%s\n", result.CTAMessage)
	}
	if result.Fallback {
		fmt.Println("(기본 메시지)")
	}
	fmt.Println()
}
