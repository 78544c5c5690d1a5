package mockllm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Listen starts a local server speaking just enough of the chat-completions
// wire shape for the harness to run without credentials or network, and
// reports the address actually bound. Pass "127.0.0.1:0" for an ephemeral
// port. Completions are served on POST /v1/chat/completions.
func Listen(ctx context.Context, addr string) (string, error) {
	if ctx == nil {
		return "", errors.New("ctx must be not nil")
	}
	if addr == "" {
		return "", errors.New("addr must be not empty")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s; %w", addr, err)
	}

	srv := &http.Server{
		Handler:           Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("failed to serve, addr=%s; %v", ln.Addr(), err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			panic(fmt.Sprintf("failed to shutdown http server; %v", err))
		}
	}()

	return ln.Addr().String(), nil
}

// Handler returns the server routes, exported so tests can mount them on an
// httptest server instead of a fixed port.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", handleChatCompletion)

	return mux
}

type (
	completionResponse struct {
		ID      string   `json:"id"`
		Object  string   `json:"object"`
		Created int64    `json:"created"`
		Model   string   `json:"model"`
		Choices []choice `json:"choices"`
		Usage   usage    `json:"usage"`
	}

	choice struct {
		Index        int     `json:"index"`
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	}

	message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	}
)

func handleChatCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("Only POST method is allowed"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	model := gjson.GetBytes(body, "model").String()
	numMessages := gjson.GetBytes(body, "messages.#").Int()
	if model == "" || numMessages == 0 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "model and messages are required"}`))
		return
	}
	lastContent := gjson.GetBytes(body, fmt.Sprintf("messages.%d.content", numMessages-1)).String()

	content := fmt.Sprintf("reasoning: echoing a deterministic answer for %d message(s)\nresult: processed %d characters", numMessages, len(lastContent))
	resp := completionResponse{
		ID:      "chatcmpl-mock",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []choice{
			{Message: message{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
		Usage: usage{
			PromptTokens:     int(numMessages) * 8,
			CompletionTokens: 16,
			TotalTokens:      int(numMessages)*8 + 16,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
