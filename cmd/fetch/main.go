// Command fetch runs the search pipeline without the TUI. Given a ticker it
// prints the price and the related headlines, exports them to CSV and exits.
// Without arguments it reads one ticker per line from an interactive prompt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/zappabad/stockhelper/internal/config"
	"github.com/zappabad/stockhelper/internal/logger"
	"github.com/zappabad/stockhelper/internal/session"
	"github.com/zappabad/stockhelper/tui/styles"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: fetch [-config path] [ticker]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		return 2
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return 1
	}

	logFile, err := logger.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		return 1
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(*cfg)
	defer sess.Close()

	if flag.NArg() == 1 {
		query := strings.TrimSpace(flag.Arg(0))
		return printResult(os.Stdout, os.Stderr, cfg.Display.Currency, query, sess.Search(ctx, query))
	}
	if err := interactive(ctx, sess, cfg.Display.Currency); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func interactive(ctx context.Context, sess *session.Session, currency string) error {
	rl, err := readline.New("code> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err != nil { // io.EOF
			break
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		printResult(rl.Stdout(), rl.Stderr(), currency, query, sess.Search(ctx, query))
	}
	return nil
}

// printResult writes a search outcome and returns the exit code it implies.
func printResult(out, errOut io.Writer, currency, query string, res session.Result) int {
	if !res.Quote.Found {
		fmt.Fprintf(errOut, "Could not retrieve the price for %s (%s)\n", query, res.Quote.Reason)
		return 1
	}

	fmt.Fprintf(out, "%s: %s %s\n", query, styles.FormatPrice(res.Quote.Price), currency)

	if len(res.News) == 0 {
		fmt.Fprintln(out, "No related news found")
		return 0
	}
	for i, item := range res.News {
		fmt.Fprintf(out, "%3d. %s\n     %s\n", i+1, item.Title, item.URL)
	}

	if res.ExportErr != nil {
		fmt.Fprintf(errOut, "Failed to save news: %v\n", res.ExportErr)
		return 1
	}
	fmt.Fprintf(out, "Saved %d headlines to %s\n", len(res.News), res.ExportPath)
	return 0
}
