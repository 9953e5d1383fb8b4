package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"sales-copilot-be/internal/bootstrap"
	"sales-copilot-be/internal/config"
	"sales-copilot-be/internal/entity"
	"sales-copilot-be/internal/service"
	"sales-copilot-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

var useMemory = flag.Bool("memory", false, "Keep sessions in memory instead of Postgres")

var (
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint      = color.New(color.Faint).SprintFunc()
	yellow     = color.New(color.FgYellow).SprintFunc()
	boldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	var db *gorm.DB
	if !*useMemory && cfg.Database.Driver != "memory" {
		conn, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v (use -memory to run without one)", err)
		}
		db = conn
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Close()
	engine := container.Engine

	snapshots, err := engine.Subscribe(ctx)
	if err != nil {
		log.Fatalf("Unable to watch engine state: %v", err)
	}
	container.Start(ctx)

	fmt.Println(boldGreen("Sales Co-pilot"))
	printHelp(engine.Snapshot())

	go render(snapshots)

	go func() {
		<-ctx.Done()
		fmt.Println("\nShutting down...")
		container.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" {
			return
		}
		if strings.HasPrefix(line, "/") {
			runCommand(ctx, container, line)
			continue
		}
		engine.SendMessage(ctx, line)
		engine.Wait()
	}
}

// render prints progress steps and new assistant replies as snapshots arrive.
func render(snapshots <-chan service.StateSnapshot) {
	var printedSteps int
	var lastReply string
	offline := false

	for snap := range snapshots {
		if snap.Offline != offline {
			offline = snap.Offline
			if offline {
				fmt.Println(boldYellow("[offline]"))
			} else {
				fmt.Println(faint("[back online]"))
			}
		}

		if !snap.Processing {
			printedSteps = 0
		}
		for ; printedSteps < len(snap.ProgressSteps); printedSteps++ {
			fmt.Println(faint("  " + snap.ProgressSteps[printedSteps]))
		}

		if n := len(snap.Messages); n > 0 {
			last := snap.Messages[n-1]
			if last.Author == entity.AuthorAssistant && last.Id.String() != lastReply {
				lastReply = last.Id.String()
				fmt.Printf("%s %s\n\n", boldCyan("Co-pilot:"), last.Text)
			}
		}
	}
}

func runCommand(ctx context.Context, c *bootstrap.Container, line string) {
	engine := c.Engine
	fields := strings.Fields(line)
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch fields[0] {
	case "/help":
		printHelp(engine.Snapshot())

	case "/new":
		s := engine.StartNewSession(ctx, arg)
		fmt.Println(faint("Started " + s.Title))

	case "/sessions":
		if err := engine.RefreshSessions(ctx); err != nil {
			fmt.Println(yellow("Storage unavailable: " + err.Error()))
		}
		for i, s := range engine.Snapshot().Sessions {
			fmt.Printf("  %d. %s %s\n", i+1, s.Title, faint(fmt.Sprintf("(%d messages)", len(s.Messages))))
		}

	case "/load", "/delete":
		session := pickSession(engine.Snapshot().Sessions, arg)
		if session == nil {
			fmt.Println(yellow("No such session, see /sessions"))
			return
		}
		if fields[0] == "/load" {
			engine.LoadSession(session)
			for _, m := range engine.Snapshot().Messages {
				fmt.Printf("%s %s\n", authorLabel(m.Author), m.Text)
			}
			return
		}
		if err := engine.DeleteSession(ctx, session); err != nil {
			fmt.Println(yellow("Delete failed: " + err.Error()))
		}

	case "/quick":
		actions := engine.Snapshot().QuickActions
		i, err := strconv.Atoi(arg)
		if err != nil || i < 1 || i > len(actions) {
			fmt.Println(yellow("Pick a quick action number, see /help"))
			return
		}
		engine.PerformQuickAction(ctx, actions[i-1])
		engine.Wait()

	case "/up", "/down":
		feedback := entity.FeedbackPositive
		if fields[0] == "/down" {
			feedback = entity.FeedbackNegative
		}
		if msg := lastAssistant(engine.Snapshot().Messages); msg != nil {
			report(engine.ProvideFeedback(ctx, msg.Id, feedback))
		}

	case "/rate":
		stars, _ := strconv.Atoi(arg)
		if msg := lastAssistant(engine.Snapshot().Messages); msg != nil {
			report(engine.SetRating(ctx, msg.Id, stars))
		}

	case "/voice":
		report(engine.ToggleVoiceCapture(ctx))
		if engine.Snapshot().Capturing {
			fmt.Println(faint("Listening..."))
		}

	case "/speak":
		engine.SetLiveSpeech(arg == "on")

	default:
		fmt.Println(yellow("Unknown command, see /help"))
	}
}

func printHelp(snap service.StateSnapshot) {
	fmt.Println("Type a message and press Enter. Commands:")
	fmt.Println(faint("  /new [title]  /sessions  /load N  /delete N  /quick N"))
	fmt.Println(faint("  /up  /down  /rate 1-5  /voice  /speak on|off  /exit"))
	for i, a := range snap.QuickActions {
		fmt.Printf("  %s %s\n", boldCyan(strconv.Itoa(i+1)+"."), a)
	}
}

func pickSession(sessions []*entity.ChatSession, arg string) *entity.ChatSession {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > len(sessions) {
		return nil
	}
	return sessions[i-1]
}

func lastAssistant(msgs []*entity.ChatMessage) *entity.ChatMessage {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Author == entity.AuthorAssistant {
			return msgs[i]
		}
	}
	fmt.Println(yellow("No reply to annotate yet"))
	return nil
}

func authorLabel(a entity.Author) string {
	if a == entity.AuthorUser {
		return boldGreen("You:")
	}
	return boldCyan("Co-pilot:")
}

func report(err error) {
	if err != nil {
		fmt.Println(yellow(err.Error()))
	}
}
