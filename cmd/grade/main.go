package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/logger"
	"github.com/gradedesk/gradedesk/internal/model"
	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

func main() {
	var (
		question string
		file     string
		topic    string
		generate bool
		health   bool
	)
	flag.StringVar(&question, "question", "", "Question text to grade against")
	flag.StringVar(&file, "file", "", "Path to the solution file (\"-\" reads stdin)")
	flag.BoolVar(&generate, "generate", false, "Generate a question instead of grading")
	flag.StringVar(&topic, "topic", "", "Topic for -generate")
	flag.BoolVar(&health, "health", false, "Check grading backend health")
	flag.Parse()

	cfg := config.Load()

	// Logs go to stderr so stdout stays pipeable.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	grader := client.New(cfg.GraderBaseURL, cfg.GraderTimeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	color := term.IsTerminal(int(os.Stdout.Fd()))

	var err error
	switch {
	case health:
		err = runHealth(ctx, grader, color)
	case generate:
		if topic == "" {
			topic = cfg.DefaultTopic
		}
		err = runGenerate(ctx, grader, topic)
	default:
		err = runGrade(ctx, grader, question, file, color)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runHealth(ctx context.Context, grader *client.Client, color bool) error {
	res, err := grader.CheckHealth(ctx)
	if err != nil || !res.Healthy() {
		fmt.Println(paint(color, ansiRed, "offline"))
		return errors.New("grading backend is offline")
	}
	fmt.Println(paint(color, ansiGreen, "online"))
	return nil
}

func runGenerate(ctx context.Context, grader *client.Client, topic string) error {
	res, err := grader.RequestQuestion(ctx, topic)
	if err != nil {
		return err
	}
	fmt.Println(res.Question)
	return nil
}

func runGrade(ctx context.Context, grader *client.Client, question, file string, color bool) error {
	reader := bufio.NewReader(os.Stdin)

	if question == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return errors.New("-question is required")
		}
		fmt.Print("Enter Question: ")
		line, _ := reader.ReadString('\n')
		question = line
	}
	question = strings.TrimSpace(question)

	code, err := readCode(reader, file)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)

	if question == "" || code == "" {
		return errors.New("question and code are required")
	}

	res, err := grader.SubmitGrade(ctx, question, code)
	if err != nil {
		return err
	}

	summary := model.Summarize(res.Grade)
	fmt.Printf("%s %s\n", paint(color, ansiBold+gradeColor(res.Grade), fmt.Sprintf("%d/100", res.Grade)), summary.Level)
	fmt.Println(summary.Message)
	fmt.Println()
	fmt.Println(res.Feedback)
	return nil
}

// readCode reads the solution from file, or from stdin when file is empty or "-".
func readCode(stdin io.Reader, file string) (string, error) {
	if file != "" && file != "-" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read solution: %w", err)
		}
		return string(b), nil
	}

	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Println("Enter Code (end with Ctrl-D):")
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read solution: %w", err)
	}
	return string(b), nil
}

func gradeColor(grade int) string {
	switch {
	case grade >= 80:
		return ansiGreen
	case grade >= 60:
		return ansiYellow
	default:
		return ansiRed
	}
}

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return code + s + ansiReset
}
