package kling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultBaseURL = "https://api-beijing.klingai.com"
	createTaskPath = "/v1/videos/image2video"
	queryTaskPath  = "/v1/videos/image2video/%s"

	DefaultModel    = "kling-v2-6"
	DefaultDuration = "5"
	DefaultMode     = "std"
	DefaultCfgScale = 0.5

	DefaultPollInterval = 5 * time.Second
	DefaultTimeout      = 300 * time.Second

	tokenTTL  = 30 * time.Minute
	tokenSkew = 5 * time.Second // negative nbf skew for clock drift
)

// Task statuses reported by the provider. Transitions are monotonic:
// submitted → processing → succeed | failed.
const (
	StatusSubmitted  = "submitted"
	StatusProcessing = "processing"
	StatusSucceed    = "succeed"
	StatusFailed     = "failed"
)

// Client talks to the Kling image-to-video API: create a task, poll it to a
// terminal state, download the artifact.
type Client struct {
	accessKey  string
	secretKey  string
	baseURL    string
	httpClient *http.Client

	PollInterval time.Duration
	Timeout      time.Duration
}

// New builds a client from explicit credentials.
func New(accessKey, secretKey string) (*Client, error) {
	if accessKey == "" || secretKey == "" {
		return nil, &ConfigError{Message: "API keys not configured; set KLING_ACCESS_KEY and KLING_SECRET_KEY in .env"}
	}
	return &Client{
		accessKey:    accessKey,
		secretKey:    secretKey,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}, nil
}

// NewFromEnv builds a client from KLING_ACCESS_KEY / KLING_SECRET_KEY.
func NewFromEnv() (*Client, error) {
	c, err := New(os.Getenv("KLING_ACCESS_KEY"), os.Getenv("KLING_SECRET_KEY"))
	if err != nil {
		return nil, err
	}
	log.Printf("[kling] Client initialized (access key %s...)", safePrefix(c.accessKey))
	return c, nil
}

// SetBaseURL overrides the API endpoint (tests point it at a local server).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// AuthToken mints the short-lived signed token the API expects. Tokens are
// regenerated per request rather than cached; the nbf is backdated by a few
// seconds so a slightly fast local clock does not produce a not-yet-valid
// token.
func (c *Client) AuthToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": c.accessKey,
		"exp": now.Add(tokenTTL).Unix(),
		"nbf": now.Add(-tokenSkew).Unix(),
	})
	return token.SignedString([]byte(c.secretKey))
}

// TaskRequest describes one image-to-video job. ImageStart/ImageEnd may be
// file paths (read and base64-encoded) or already-encoded base64 strings.
// An empty ImageEnd requests single-frame animation instead of first/last
// frame interpolation.
type TaskRequest struct {
	Model          string
	ImageStart     string
	ImageEnd       string
	Prompt         string
	NegativePrompt string
	Duration       string // "5" | "10"
	Mode           string // std | pro
	CfgScale       float64
	CallbackURL    string
}

type createTaskBody struct {
	ModelName      string   `json:"model_name"`
	Image          string   `json:"image"`
	ImageTail      string   `json:"image_tail,omitempty"`
	Duration       string   `json:"duration"`
	Mode           string   `json:"mode"`
	Prompt         string   `json:"prompt,omitempty"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	CallbackURL    string   `json:"callback_url,omitempty"`
	CfgScale       *float64 `json:"cfg_scale,omitempty"`
}

// Task is the provider-side view of one job.
type Task struct {
	TaskID    string      `json:"task_id"`
	Status    string      `json:"task_status"`
	StatusMsg string      `json:"task_status_msg"`
	Result    *TaskResult `json:"task_result"`
}

type TaskResult struct {
	Videos []TaskVideo `json:"videos"`
}

type TaskVideo struct {
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateTask submits a new video generation task.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}
	if req.Duration == "" {
		req.Duration = DefaultDuration
	}
	if req.Mode == "" {
		req.Mode = DefaultMode
	}

	body := createTaskBody{
		ModelName:      req.Model,
		Image:          prepareImage(req.ImageStart),
		Duration:       req.Duration,
		Mode:           req.Mode,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		CallbackURL:    req.CallbackURL,
	}
	if req.ImageEnd != "" {
		body.ImageTail = prepareImage(req.ImageEnd)
	}

	// cfg_scale is only honored by v1.x models
	if !strings.HasPrefix(req.Model, "kling-v2") {
		scale := req.CfgScale
		if scale == 0 {
			scale = DefaultCfgScale
		}
		body.CfgScale = &scale
	}

	videoType := "first-last frame"
	if req.ImageEnd == "" {
		videoType = "single frame animation"
	}
	log.Printf("[kling] Creating task: model=%s mode=%s duration=%ss type=%s",
		req.Model, req.Mode, req.Duration, videoType)

	var task Task
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+createTaskPath, body, "create task", &task); err != nil {
		return nil, err
	}

	log.Printf("[kling] Task created: id=%s status=%s", task.TaskID, task.Status)
	return &task, nil
}

// QueryTask fetches the current state of a task.
func (c *Client) QueryTask(ctx context.Context, taskID string) (*Task, error) {
	url := c.baseURL + fmt.Sprintf(queryTaskPath, taskID)
	var task Task
	if err := c.doJSON(ctx, http.MethodGet, url, nil, "query task", &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// WaitForCompletion polls the task at PollInterval until it reaches a terminal
// state, the wall-clock Timeout elapses, or ctx is canceled.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string) (*Task, error) {
	start := time.Now()
	for {
		elapsed := time.Since(start)
		if elapsed > c.Timeout {
			return nil, &TimeoutError{TaskID: taskID, Elapsed: elapsed}
		}

		task, err := c.QueryTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		switch task.Status {
		case StatusSucceed:
			log.Printf("[kling] Task %s completed in %ds", taskID, int(elapsed.Seconds()))
			return task, nil
		case StatusFailed:
			msg := task.StatusMsg
			if msg == "" {
				msg = "unknown error"
			}
			return nil, &TaskError{TaskID: taskID, Message: msg}
		case StatusSubmitted, StatusProcessing:
			log.Printf("[kling]   [%ds] task %s: %s, waiting...", int(elapsed.Seconds()), taskID, task.Status)
		default:
			return nil, &TaskError{TaskID: taskID, Message: "unknown task status: " + task.Status}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}
}

// DownloadVideo streams a generated video to savePath, creating parent
// directories as needed.
func (c *Client) DownloadVideo(ctx context.Context, videoURL, savePath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RequestError{Action: "download video", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{Action: "download video", HTTPStatus: resp.StatusCode, Message: "non-success download status"}
	}

	f, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(savePath)
		return "", fmt.Errorf("write video: %w", err)
	}

	log.Printf("[kling] Downloaded %.2f MB → %s", float64(written)/(1024*1024), savePath)
	return savePath, nil
}

// GenerateAndDownload runs submit → await → download as one unit. Any step
// failing aborts this single job only.
func (c *Client) GenerateAndDownload(ctx context.Context, req TaskRequest, outputPath string) (string, error) {
	task, err := c.CreateTask(ctx, req)
	if err != nil {
		return "", err
	}

	done, err := c.WaitForCompletion(ctx, task.TaskID)
	if err != nil {
		return "", err
	}

	if done.Result == nil || len(done.Result.Videos) == 0 {
		return "", &TaskError{TaskID: task.TaskID, Message: "task succeeded but returned no video"}
	}

	return c.DownloadVideo(ctx, done.Result.Videos[0].URL, outputPath)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body any, action string, out *Task) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", action, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	token, err := c.AuthToken()
	if err != nil {
		return fmt.Errorf("sign auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RequestError{Action: action, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &RequestError{
			Action:     action,
			HTTPStatus: resp.StatusCode,
			Message:    truncate(string(respBytes), 200),
		}
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return fmt.Errorf("parse %s response: %w", action, err)
	}
	if envelope.Code != 0 {
		return &RequestError{Action: action, Code: envelope.Code, Message: envelope.Message}
	}

	return json.Unmarshal(envelope.Data, out)
}

// prepareImage returns base64 image data. A value that names an existing file
// is read and encoded; anything else is assumed to already be base64.
func prepareImage(image string) string {
	data, err := os.ReadFile(image)
	if err != nil {
		return image
	}
	return base64.StdEncoding.EncodeToString(data)
}

func safePrefix(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
