package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	smokeBaseURL  string
	smokeQuery    string
	smokeDocument string
	smokeWeb      bool
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run an end to end pass against a live server",
	Long: `Uploads a small text document, opens a chat, asks a question about it,
reads the history back and cleans everything up again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &client{base: smokeBaseURL, http: &http.Client{Timeout: 2 * time.Minute}}
		return runSmoke(c)
	},
}

func init() {
	smokeCmd.Flags().StringVar(&smokeBaseURL, "url", "http://localhost:8000", "server base URL")
	smokeCmd.Flags().StringVar(&smokeQuery, "query", "When did the project start?", "question to ask")
	smokeCmd.Flags().StringVar(&smokeDocument, "document", "The project started in 2019 and is led by Ada.", "content of the uploaded smoke.txt")
	smokeCmd.Flags().BoolVar(&smokeWeb, "web", false, "enable web search for the chat turn")
}

const smokeFile = "smoke.txt"

func runSmoke(c *client) error {
	color.Cyan("Starting smoke test against %s\n", c.base)

	step := func(name string) { color.Yellow("\n> %s", name) }

	step("1. Health")
	if _, err := c.do(http.MethodGet, "/health", nil, ""); err != nil {
		return fail(err)
	}
	color.Green("ok")

	step("2. Upload " + smokeFile)
	body, contentType, err := multipartBody("files", smokeFile, []byte(smokeDocument))
	if err != nil {
		return fail(err)
	}
	out, err := c.do(http.MethodPost, "/upload", body, contentType)
	if err != nil {
		return fail(err)
	}
	prettyPrint(out)

	step("3. Create chat")
	out, err = c.do(http.MethodPost, "/create_chat", nil, "")
	if err != nil {
		return fail(err)
	}
	sessionKey, _ := out["session_key"].(string)
	if sessionKey == "" {
		return fail(fmt.Errorf("no session_key in response"))
	}
	color.Green("session %s", sessionKey)

	step("4. Chat")
	chatReq, _ := json.Marshal(map[string]interface{}{
		"session_key":       sessionKey,
		"query":             smokeQuery,
		"enable_web_search": smokeWeb,
	})
	out, err = c.do(http.MethodPost, "/chat", bytes.NewReader(chatReq), "application/json")
	if err != nil {
		return fail(err)
	}
	prettyPrint(out)

	step("5. History")
	out, err = c.do(http.MethodGet, "/chat_history?session_key="+url.QueryEscape(sessionKey), nil, "")
	if err != nil {
		return fail(err)
	}
	if history, ok := out["history"].([]interface{}); ok {
		color.Green("%d turns recorded", len(history))
	}

	step("6. Cleanup")
	if _, err := c.do(http.MethodPost, "/delete_chat?session_key="+url.QueryEscape(sessionKey), nil, ""); err != nil {
		return fail(err)
	}
	if _, err := c.do(http.MethodDelete, "/delete_document?filename="+smokeFile, nil, ""); err != nil {
		return fail(err)
	}

	color.Green("\nSmoke test passed")
	return nil
}

type client struct {
	base string
	http *http.Client
}

// do sends a request and decodes the JSON object in the response. Non 2xx
// statuses are returned as errors.
func (c *client) do(method, path string, body io.Reader, contentType string) (map[string]interface{}, error) {
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, raw)
	}

	out := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return out, nil
}

func multipartBody(field, filename string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func fail(err error) error {
	color.Red("Failed: %v", err)
	return err
}
