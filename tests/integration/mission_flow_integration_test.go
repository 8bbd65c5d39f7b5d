//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("VITALTRACK_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestDailyMissionJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]any{
		"email":    userEmail,
		"password": password,
		"name":     "Integration User",
	}, &registerResp)
	if registerResp.Token == "" || registerResp.UserID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var questionsResp struct {
		Total    int `json:"total"`
		Sections []struct {
			Questions []struct {
				ID      string   `json:"id"`
				Type    string   `json:"type"`
				Options []string `json:"options"`
				Scale   *struct {
					Labels []string `json:"labels"`
				} `json:"scale"`
			} `json:"questions"`
		} `json:"sections"`
	}
	doGet(t, client, base+"/api/missions/questions", token, &questionsResp)
	if questionsResp.Total == 0 {
		t.Fatalf("no questions returned")
	}

	// Answer every question in presentation order with a valid value for its
	// widget type.
	var answerResp struct {
		Cursor      int  `json:"cursor"`
		Completed   bool `json:"completed"`
		TotalPoints int  `json:"total_points"`
	}
	for _, sec := range questionsResp.Sections {
		for _, q := range sec.Questions {
			var value any
			switch q.Type {
			case "multiple_choice":
				value = q.Options[0]
			case "yes_no":
				value = true
			case "scale", "emoji_scale", "star_scale":
				value = 3
			default:
				value = "uma pequena vitória"
			}
			doPost(t, client, base+"/api/missions/answer", token, map[string]any{
				"question_id": q.ID,
				"value":       value,
			}, &answerResp)
		}
	}
	if !answerResp.Completed {
		t.Fatalf("mission not completed after answering all questions: %+v", answerResp)
	}
	if answerResp.TotalPoints == 0 {
		t.Fatalf("expected points after full completion")
	}

	var stateResp struct {
		IsCompleted bool `json:"is_completed"`
		StreakDays  int  `json:"streak_days"`
	}
	doGet(t, client, base+"/api/missions/state", token, &stateResp)
	if !stateResp.IsCompleted || stateResp.StreakDays < 1 {
		t.Fatalf("unexpected state after completion: %+v", stateResp)
	}

	var summaryResp struct {
		MissionCompleted bool `json:"mission_completed"`
		WaterTotalML     int  `json:"water_total_ml"`
	}
	doGet(t, client, base+"/api/dashboard/summary", token, &summaryResp)
	if !summaryResp.MissionCompleted {
		t.Fatalf("dashboard does not reflect completion: %+v", summaryResp)
	}
	if summaryResp.WaterTotalML == 0 {
		t.Fatalf("expected derived water tracking in summary")
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	doRequest(t, client, req, out)
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	doRequest(t, client, req, out)
}

func doRequest(t *testing.T, client *http.Client, req *http.Request, out any) {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, req.URL, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", req.URL, err)
		}
	}
}
