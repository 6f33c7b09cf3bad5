package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/raphaelgruber/redactchat/internal/config"
	"github.com/raphaelgruber/redactchat/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveBind       string
	serveReplyRules []string
	serveInputRules []string
	serveNoBrowser  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat UI as an HTTP page",
	Long: `Serve the chat UI over plain HTTP and open it in a browser.

Each POST /chat request carries its own conversation; the server holds no
session state. Only http:// bind addresses are supported.

Examples:
  redactchat serve
  redactchat serve --bind http://0.0.0.0:9000 --no-browser
  redactchat serve --gpt-redact-rules EMAIL_ADDRESS,URL`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveBind, "bind", "http://127.0.0.1:8000", "the socket to bind")
	serveCmd.Flags().StringSliceVar(&serveReplyRules, "gpt-redact-rules", nil,
		"redaction rules applied to model replies")
	serveCmd.Flags().StringSliceVar(&serveInputRules, "user-input-redact-rules", config.DefaultUserInputRules,
		"redaction rules applied to user input")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "do not open the chat page in a browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	bind, err := server.ParseBind(serveBind)
	if err != nil {
		return err
	}

	inputRules := resolveRules(cmd, "user-input-redact-rules", serveInputRules, cfg.UserInputRules)
	replyRules := resolveRules(cmd, "gpt-redact-rules", serveReplyRules, cfg.ReplyRules)

	h := server.NewHandler(pipe, inputRules, replyRules)
	srv := server.New(bind.Host, h, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving on %s\n", bind)
	if !serveNoBrowser {
		openBrowser(bind.String())
	}

	return srv.Run(ctx)
}

// openBrowser makes a best-effort attempt to open url in the default
// browser; failures are logged, not fatal.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("could not open browser", "url", url, "error", err)
	}
}
