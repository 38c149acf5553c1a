// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/chat"
	"github.com/pdiddy/portfolio-engine/internal/httputil"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the research or paper assistant from the terminal",
	Long: `Chat reads one message per line and prints the assistant's reply. With
--paper the conversation is about that publication; otherwise it is the
general research assistant.

Without --url the proxy runs in process against the configured gateway.
With --url, messages go to a running serve instance at that base URL.

Type /paper <title> to switch papers (clearing the history), /general to
leave paper mode, /quit to exit. While a conversation is empty, /suggest
lists starter questions and /ask <n> sends one.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	title, _ := cmd.Flags().GetString("paper")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()
	pubs, err := a.library.Get(a.cfg.Chat.PublicationsCatalog)
	if err != nil {
		return err
	}

	var transport chat.Transport = chat.ProxyTransport{Proxy: a.proxy}
	if url != "" {
		transport = newRoutedTransport(url, httputil.NewClient(a.cfg.Gateway.HTTPConfig))
	}

	notify := chat.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, "!", msg)
	})
	conv := chat.NewConversation(transport, notify)
	if title != "" {
		if err := setPaper(conv, pubs, title); err != nil {
			return err
		}
	}

	return chatLoop(cmd.Context(), conv, pubs, os.Stdin, os.Stdout)
}

func chatLoop(ctx context.Context, conv *chat.Conversation, pubs types.Catalog, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc := bufio.NewScanner(in)
	prompt := func() {
		if p := conv.Target(); p != nil {
			fmt.Fprintf(out, "[%s] > ", truncateTitle(p.Title))
			return
		}
		fmt.Fprint(out, "> ")
	}

	printSuggestions(out, conv.Suggestions())
	for prompt(); sc.Scan(); prompt() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/general":
			conv.SetTarget(nil)
			printSuggestions(out, conv.Suggestions())
			continue
		case strings.HasPrefix(line, "/paper "):
			if err := setPaper(conv, pubs, strings.TrimSpace(strings.TrimPrefix(line, "/paper "))); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			printSuggestions(out, conv.Suggestions())
			continue
		case line == "/suggest":
			if s := conv.Suggestions(); len(s) > 0 {
				printSuggestions(out, s)
			} else {
				fmt.Fprintln(out, "Suggestions are shown only before the first message.")
			}
			continue
		case strings.HasPrefix(line, "/ask "):
			q, err := pickSuggestion(conv.Suggestions(), strings.TrimSpace(strings.TrimPrefix(line, "/ask ")))
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, q)
			line = q
		}

		reply, err := conv.Submit(ctx, line)
		switch {
		case err == nil:
			fmt.Fprintln(out, reply)
		case errors.Is(err, chat.ErrResponseFailed):
			// The notifier has already reported it.
		default:
			fmt.Fprintln(out, err)
		}
	}
	return sc.Err()
}

func printSuggestions(out io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(out, "Try asking:")
	for i, q := range suggestions {
		fmt.Fprintf(out, "  %d. %s\n", i+1, q)
	}
}

// pickSuggestion returns suggestion n, counting from 1.
func pickSuggestion(suggestions []string, n string) (string, error) {
	if len(suggestions) == 0 {
		return "", fmt.Errorf("no suggestions once the conversation has started")
	}
	i, err := strconv.Atoi(n)
	if err != nil || i < 1 || i > len(suggestions) {
		return "", fmt.Errorf("pick a suggestion between 1 and %d", len(suggestions))
	}
	return suggestions[i-1], nil
}

// setPaper targets the conversation at the publication titled title. Records
// that suppress the assistant are refused.
func setPaper(conv *chat.Conversation, pubs types.Catalog, title string) error {
	for _, r := range pubs.Records {
		if r.Title != title {
			continue
		}
		if !r.AssistantEnabled() {
			return fmt.Errorf("the assistant is disabled for %q", title)
		}
		ref := r.PaperRef()
		conv.SetTarget(&ref)
		return nil
	}
	return fmt.Errorf("%w: no publication titled %q", catalog.ErrNotFound, title)
}

// routedTransport posts to a running server, picking the endpoint by
// whether the request carries a paper.
type routedTransport struct {
	general chat.Transport
	paper   chat.Transport
}

func newRoutedTransport(base string, client *http.Client) routedTransport {
	base = strings.TrimRight(base, "/")
	return routedTransport{
		general: &chat.HTTPTransport{URL: base + "/research-assistant", Client: client},
		paper:   &chat.HTTPTransport{URL: base + "/paper-chat", Client: client},
	}
}

func (t routedTransport) Send(ctx context.Context, req types.ChatRequest) (string, error) {
	if req.Paper != nil {
		return t.paper.Send(ctx, req)
	}
	return t.general.Send(ctx, req)
}

// truncateTitle shortens s to at most 40 runes.
func truncateTitle(s string) string {
	const max = 40
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	chatCmd.Flags().String("paper", "", "exact title of the paper to discuss")
	chatCmd.Flags().String("url", "", "base URL of a running server (e.g. http://localhost:8080)")

	rootCmd.AddCommand(chatCmd)
}
