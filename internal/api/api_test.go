package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"vital/internal/api"
	"vital/internal/audio"
	"vital/internal/auth"
	"vital/internal/config"
	"vital/internal/database"
	"vital/internal/models"

	"github.com/gofiber/fiber/v2"
)

func setupTestApp(t *testing.T) (*fiber.App, *sql.DB) {
	auth.Configure(config.AuthConfig{
		JWTSecret:          "test-secret-for-handler-tests-0123456789",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   7,
		RememberDays:       30,
	})

	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := audio.NewStore(t.TempDir(), 2*1024*1024)
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	api.SetupRoutes(app, db, store, api.NewWebPush(config.PushConfig{}))
	return app, db
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	body, _ := json.Marshal(models.RegisterRequest{
		Username: username,
		Password: "password123",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var authResp models.AuthResponse
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &authResp)
	if authResp.Token == "" {
		t.Fatal("Expected token in response")
	}
	return authResp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setupTestApp(t)
	registerUser(t, app, "testuser")

	loginReq := models.LoginRequest{Username: "testuser", Password: "password123"}
	body, _ := json.Marshal(loginReq)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var loginResp models.AuthResponse
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &loginResp)
	if loginResp.Token == "" {
		t.Fatal("Expected token in response")
	}

	// wrong password is rejected
	body, _ = json.Marshal(models.LoginRequest{Username: "testuser", Password: "wrong"})
	req = httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}
}

func createReminder(t *testing.T, app *fiber.App, token string, req models.CreateReminderRequest) models.Reminder {
	body, _ := json.Marshal(req)
	hreq := httptest.NewRequest("POST", "/api/reminders/", bytes.NewReader(body))
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(hreq)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var r models.Reminder
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &r)
	return r
}

func TestCreateAndListReminders(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "remuser")

	r := createReminder(t, app, token, models.CreateReminderRequest{
		Title:    "Drink water",
		Time:     "07:00",
		Category: models.CategoryWater,
		Repeat:   models.RepeatDaily,
	})
	if r.Title != "Drink water" || r.Repeat != models.RepeatDaily || !r.Active {
		t.Fatalf("Unexpected reminder: %+v", r)
	}

	createReminder(t, app, token, models.CreateReminderRequest{
		Title: "Dentist",
		Time:  "15:30",
		Date:  "2026-09-10",
	})

	req := httptest.NewRequest("GET", "/api/reminders/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var reminders []models.Reminder
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &reminders)
	if len(reminders) != 2 {
		t.Fatalf("Expected 2 reminders, got %d", len(reminders))
	}
}

func TestCreateReminderValidation(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "valuser")

	bad := []models.CreateReminderRequest{
		{Title: "", Time: "07:00"},
		{Title: "x", Time: "25:99"},
		{Title: "x", Time: "07:00", Category: "gaming"},
		{Title: "x", Time: "07:00", Repeat: "hourly"},
		{Title: "x", Time: "07:00", Date: "10-09-2026"},
	}
	for i, reqBody := range bad {
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest("POST", "/api/reminders/", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)
		if resp.StatusCode != 400 {
			t.Fatalf("case %d: expected status 400, got %d", i, resp.StatusCode)
		}
	}
}

func TestDueRemindersEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "dueuser")

	now := time.Now()
	createReminder(t, app, token, models.CreateReminderRequest{
		Title:    "Due now",
		Time:     now.Format("15:04"),
		Category: models.CategoryMedication,
		Repeat:   models.RepeatDaily,
	})
	createReminder(t, app, token, models.CreateReminderRequest{
		Title:  "Not due",
		Time:   now.Add(2 * time.Hour).Format("15:04"),
		Repeat: models.RepeatDaily,
	})

	req := httptest.NewRequest("GET", "/api/reminders/due", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var due models.DueRemindersResponse
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &due)
	if !due.Success {
		t.Fatal("Expected success response")
	}
	if len(due.Reminders) != 1 || due.Reminders[0].Title != "Due now" {
		t.Fatalf("Expected exactly the due reminder, got %+v", due.Reminders)
	}
	if due.CurrentTime == "" {
		t.Fatal("Expected current_time in response")
	}
}

func TestDueRemindersRequiresAuth(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/api/reminders/due", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}
}

func TestCompleteReminderSemantics(t *testing.T) {
	app, db := setupTestApp(t)
	token := registerUser(t, app, "compuser")

	once := createReminder(t, app, token, models.CreateReminderRequest{
		Title: "One-off", Time: "07:00", Repeat: models.RepeatOnce,
	})
	daily := createReminder(t, app, token, models.CreateReminderRequest{
		Title: "Every day", Time: "07:00", Repeat: models.RepeatDaily,
	})

	for _, r := range []models.Reminder{once, daily} {
		req := httptest.NewRequest("POST", "/api/reminders/"+strconv.Itoa(r.ID)+"/complete", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
	}

	// once-reminders complete terminally; daily only records the ack
	var onceCompleted, dailyCompleted bool
	var lastCompleted sql.NullTime
	if err := db.QueryRow("SELECT is_completed FROM reminders WHERE id = ?", once.ID).Scan(&onceCompleted); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT is_completed, last_completed_at FROM reminders WHERE id = ?", daily.ID).Scan(&dailyCompleted, &lastCompleted); err != nil {
		t.Fatal(err)
	}
	if !onceCompleted {
		t.Fatal("Expected once-reminder to be terminally completed")
	}
	if dailyCompleted {
		t.Fatal("Expected daily reminder to stay uncompleted")
	}
	if !lastCompleted.Valid {
		t.Fatal("Expected daily reminder acknowledgment to be recorded")
	}
}

func TestToggleReminder(t *testing.T) {
	app, db := setupTestApp(t)
	token := registerUser(t, app, "toguser")

	r := createReminder(t, app, token, models.CreateReminderRequest{
		Title: "Sleep", Time: "22:00", Repeat: models.RepeatDaily, Category: models.CategorySleep,
	})

	req := httptest.NewRequest("POST", "/api/reminders/"+strconv.Itoa(r.ID)+"/toggle", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var active bool
	if err := db.QueryRow("SELECT is_active FROM reminders WHERE id = ?", r.ID).Scan(&active); err != nil {
		t.Fatal(err)
	}
	if active {
		t.Fatal("Expected reminder to be inactive after toggle")
	}
}

func uploadRingtone(t *testing.T, app *fiber.App, token, filename string, data []byte) (int, map[string]interface{}) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("ringtone", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	w.Close()

	req := httptest.NewRequest("POST", "/api/ringtone/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &out)
	return resp.StatusCode, out
}

func TestRingtoneUploadLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "toneuser")

	// no custom ringtone yet
	req := httptest.NewRequest("GET", "/api/ringtone/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	var out map[string]interface{}
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &out)
	if out["has_custom"] != false {
		t.Fatalf("Expected has_custom=false, got %v", out)
	}

	// oversized upload is rejected
	code, out := uploadRingtone(t, app, token, "big.wav", make([]byte, 3*1024*1024))
	if code != 400 {
		t.Fatalf("Expected status 400 for 3MB upload, got %d: %v", code, out)
	}

	// wrong type is rejected
	code, _ = uploadRingtone(t, app, token, "virus.exe", []byte("MZ not audio"))
	if code != 400 {
		t.Fatalf("Expected status 400 for non-audio upload, got %d", code)
	}

	// a 1MB wav succeeds
	code, out = uploadRingtone(t, app, token, "alarm.wav", make([]byte, 1024*1024))
	if code != 200 {
		t.Fatalf("Expected status 200, got %d: %v", code, out)
	}
	first, _ := out["filename"].(string)
	if first == "" {
		t.Fatal("Expected filename in upload response")
	}

	// get reflects the stored ringtone
	req = httptest.NewRequest("GET", "/api/ringtone/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	bodyBytes, _ = io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &out)
	if out["has_custom"] != true || out["filename"] != first {
		t.Fatalf("Expected stored ringtone %q, got %v", first, out)
	}

	// delete removes it
	req = httptest.NewRequest("DELETE", "/api/ringtone/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/ringtone/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	bodyBytes, _ = io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &out)
	if out["has_custom"] != false {
		t.Fatalf("Expected has_custom=false after delete, got %v", out)
	}
}

func TestWaterAndSteps(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "actuser")

	for i := 1; i <= 3; i++ {
		req := httptest.NewRequest("POST", "/api/activity/water", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		var out map[string]interface{}
		bodyBytes, _ := io.ReadAll(resp.Body)
		json.Unmarshal(bodyBytes, &out)
		if int(out["water_intake_glasses"].(float64)) != i {
			t.Fatalf("Expected %d glasses, got %v", i, out)
		}
	}

	body, _ := json.Marshal(map[string]int{"steps": 4000})
	req := httptest.NewRequest("POST", "/api/activity/steps", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/activity/today", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	var a models.DailyActivity
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &a)
	if a.WaterGlasses != 3 || a.Steps != 4000 {
		t.Fatalf("Expected 3 glasses and 4000 steps, got %+v", a)
	}
}

func TestBMICalculateAndHistory(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "bmiuser")

	body, _ := json.Marshal(map[string]interface{}{"height_cm": 180.0, "weight_kg": 75.0})
	req := httptest.NewRequest("POST", "/api/bmi/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out map[string]interface{}
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &out)
	if out["bmi_value"].(float64) != 23.1 || out["bmi_category"] != "Normal" {
		t.Fatalf("Expected BMI 23.1 Normal, got %v", out)
	}

	req = httptest.NewRequest("GET", "/api/bmi/latest", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
}
