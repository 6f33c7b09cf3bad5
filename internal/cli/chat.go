package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/redactchat/internal/config"
	"github.com/raphaelgruber/redactchat/internal/models"
	"github.com/raphaelgruber/redactchat/internal/pipeline"
	"github.com/raphaelgruber/redactchat/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	chatReplyRules      []string
	chatInputRules      []string
	chatNewConversation bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat within the terminal",
	Long: `Chat with the model in the terminal.

The previous conversation is loaded at start (see --previous-conversation)
and saved on Ctrl-C or SIGTERM if anything changed. Blank input lines are
ignored.

Examples:
  redactchat chat
  redactchat chat --new-conversation
  redactchat --previous-conversation notes.json chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVar(&chatReplyRules, "gpt-redact-rules", nil,
		"redaction rules applied to model replies")
	chatCmd.Flags().StringSliceVar(&chatInputRules, "user-input-redact-rules", config.DefaultUserInputRules,
		"redaction rules applied to user input")
	chatCmd.Flags().BoolVar(&chatNewConversation, "new-conversation", false,
		"clear the previous conversation and start a new one")
}

// theme holds the transcript colors. Styling is dropped when stdout is
// not a terminal.
type theme struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	redacted  lipgloss.Style
	notice    lipgloss.Style
}

func newTheme() theme {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		plain := lipgloss.NewStyle()
		return theme{user: plain, assistant: plain, redacted: plain, notice: plain}
	}
	return theme{
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true),
		redacted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8700")),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true),
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	previous, err := loadPrevious()
	if err != nil {
		return err
	}

	saver := store.NewAutoSaver(&previous, previousConversation)

	// Interrupt/terminate writes the snapshot once, only if anything
	// changed, then exits. A turn in flight at that moment is lost.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		flushAndExit(saver)
	}()

	th := newTheme()
	inputRules := resolveRules(cmd, "user-input-redact-rules", chatInputRules, cfg.UserInputRules)
	replyRules := resolveRules(cmd, "gpt-redact-rules", chatReplyRules, cfg.ReplyRules)

	printTranscript(th, previous)

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println(th.user.Render("\n<============================== From You"))
		if !reader.Scan() {
			break
		}
		line := reader.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		turn, err := pipe.ProcessTurn(cmd.Context(), line, previous, inputRules, replyRules)
		if err != nil {
			if errors.Is(err, pipeline.ErrEmptyMessage) {
				continue
			}
			return err
		}

		fmt.Println(th.redacted.Render("\n-------- Redacted Data ----------"))
		fmt.Println(turn.SanitizedUser)
		printReply(th, turn.Assistant.Content, turn.Annotated)

		previous.AppendTurn(turn.SanitizedUser, turn.Assistant, turn.Annotated)
		saver.MarkDirty()
	}

	if err := reader.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	saved, err := saver.Flush()
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	if saved {
		fmt.Printf("\nSaved conversation to %s\n", saver.Path())
	}
	return nil
}

// loadPrevious resolves the starting conversation. --new-conversation
// wins over everything, an explicit path must exist, and the fallback
// file is optional.
func loadPrevious() (models.Conversation, error) {
	if chatNewConversation {
		return models.Conversation{}, nil
	}
	if previousConversation != "" {
		return store.Load(previousConversation)
	}
	return store.LoadDefault()
}

func flushAndExit(saver *store.AutoSaver) {
	saved, err := saver.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: save conversation: %v\n", err)
		os.Exit(1)
	}
	if saved {
		fmt.Printf("\nSaved conversation to %s\n", saver.Path())
	}
	os.Exit(0)
}

func printTranscript(th theme, conv models.Conversation) {
	for _, entry := range conv {
		switch entry.Message.Role {
		case models.RoleUser:
			fmt.Println(th.user.Render("\n<============================== From You"))
			fmt.Println(entry.Message.Content)
			fmt.Println(th.redacted.Render("\n-------- Redacted Data ----------"))
			fmt.Println(entry.Annotated)
		case models.RoleAssistant:
			printReply(th, entry.Message.Content, entry.Annotated)
		}
	}
}

func printReply(th theme, content, annotated string) {
	fmt.Println(th.assistant.Render("\nFrom the model ==============================>"))
	fmt.Println(content)
	fmt.Println(th.notice.Render("\n---------- Redacted Text ----------"))
	fmt.Println(annotated)
}
