package tests

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/educode/apps/api/echo"
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/user"
	"github.com/trezcool/educode/tests"
)

func Test_adminApi_reports(t *testing.T) {
	app := setup(t)
	adm, _ := testutil.SuperAdmin(t, app.store)
	student := testutil.CreateUser(t, app.store, "Student", "student@test.cd", user.RoleStudent)
	adminToken := getToken(t, app.conf, adm)
	studentToken := getToken(t, app.conf, student)

	app.run(t, []httpTest{
		{name: "file: auth required", method: http.MethodPost, path: "/v1/admin/reports", body: []byte(`{"type":"ui","description":"Broken"}`), wantCode: http.StatusUnauthorized},
		{name: "file: invalid type", method: http.MethodPost, path: "/v1/admin/reports", token: studentToken, body: []byte(`{"type":"bug","description":"Broken"}`), wantCode: http.StatusBadRequest},
		{name: "list: admin only", path: "/v1/admin/reports", token: studentToken, wantCode: http.StatusForbidden},
	})

	rec := app.do(http.MethodPost, "/v1/admin/reports", studentToken, marchallObj(t, admin.NewReport{Type: admin.ReportUI, Description: "The sidebar overlaps"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var report admin.Report
	unmarshal(t, rec, &report)
	assert.Equal(t, admin.ReportNew, report.Status)
	path := "/v1/admin/reports/" + report.ID

	app.run(t, []httpTest{
		{name: "list", path: "/v1/admin/reports", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, []admin.Report{report})},
		{name: "status: invalid", method: http.MethodPut, path: path + "/status", token: adminToken, body: []byte(`{"status":"closed"}`), wantCode: http.StatusBadRequest},
		{name: "status: unknown report", method: http.MethodPut, path: "/v1/admin/reports/rpt_nope/status", token: adminToken, body: []byte(`{"status":"in_progress"}`), wantCode: http.StatusNotFound},
		{name: "status", method: http.MethodPut, path: path + "/status", token: adminToken, body: []byte(`{"status":"in_progress"}`), wantCode: http.StatusOK},
		{name: "reply: blank", method: http.MethodPost, path: path + "/reply", token: adminToken, body: []byte(`{"reply":""}`), wantCode: http.StatusBadRequest},
	})

	rec = app.do(http.MethodPost, path+"/reply", adminToken, []byte(`{"reply":"Fixed in the last release"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &report)
	assert.Equal(t, admin.ReportResolved, report.Status)
	assert.Equal(t, "Fixed in the last release", report.Reply)

	var resolved bool
	for _, msg := range app.mailer.SentMessages() {
		if msg.To[0].Address == student.Email && strings.Contains(msg.Subject, "Your report has been resolved") {
			resolved = true
		}
	}
	assert.True(t, resolved, "reporter was not emailed")
}

func Test_adminApi_backups(t *testing.T) {
	app := setup(t)
	adm, _ := testutil.SuperAdmin(t, app.store)
	teacher := testutil.CreateUser(t, app.store, "Teacher", "teacher@test.cd", user.RoleTeacher)
	adminToken := getToken(t, app.conf, adm)
	teacherToken := getToken(t, app.conf, teacher)

	app.run(t, []httpTest{
		{name: "create: admin only", method: http.MethodPost, path: "/v1/admin/backups", token: teacherToken, wantCode: http.StatusForbidden},
		{name: "list: empty", path: "/v1/admin/backups", token: adminToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "restore: unknown backup", method: http.MethodPost, path: "/v1/admin/backups/bkp_nope/restore", token: adminToken, wantCode: http.StatusNotFound},
		{name: "restore job: unknown", path: "/v1/admin/restores/rst_nope", token: adminToken, wantCode: http.StatusNotFound},
	})

	rec := app.do(http.MethodPost, "/v1/admin/backups", adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var backup admin.Backup
	unmarshal(t, rec, &backup)
	assert.Equal(t, admin.BackupFull, backup.Type)

	rec = app.do(http.MethodPost, "/v1/admin/backups/"+backup.ID+"/restore", adminToken)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var job admin.RestoreJob
	unmarshal(t, rec, &job)
	assert.Equal(t, admin.RestoreStarted, job.State)
	assert.Equal(t, backup.ID, job.BackupID)

	jobPath := "/v1/admin/restores/" + job.ID
	assert.Eventually(t, func() bool {
		rec := app.do(http.MethodGet, jobPath, adminToken)
		var current admin.RestoreJob
		unmarshal(t, rec, &current)
		return current.State == admin.RestoreCompleted
	}, time.Second, 5*time.Millisecond)

	app.run(t, []httpTest{
		{
			name: "cancel: already completed", method: http.MethodDelete, path: jobPath, token: adminToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: admin.ErrRestoreFinished.Error()}),
		},
	})
}

func Test_adminApi_config(t *testing.T) {
	app := setup(t)
	adm, _ := testutil.SuperAdmin(t, app.store)
	teacher := testutil.CreateUser(t, app.store, "Teacher", "teacher@test.cd", user.RoleTeacher)
	student := testutil.CreateUser(t, app.store, "Student", "student@test.cd", user.RoleStudent)
	adminToken := getToken(t, app.conf, adm)
	studentToken := getToken(t, app.conf, student)

	rec := app.do(http.MethodGet, "/v1/admin/config", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var sc admin.SystemConfig
	unmarshal(t, rec, &sc)
	assert.Equal(t, app.conf.Site.Name, sc.SiteName)
	assert.True(t, sc.PaymentGateways.MoMo)

	sc.PaymentGateways.MoMo = false
	app.run(t, []httpTest{
		{name: "read: admin only", path: "/v1/admin/config", token: studentToken, wantCode: http.StatusForbidden},
		{name: "update: invalid email", method: http.MethodPut, path: "/v1/admin/config", token: adminToken, body: []byte(`{"site_name":"EduCode","support_email":"nope"}`), wantCode: http.StatusBadRequest},
		{name: "update: disable MoMo", method: http.MethodPut, path: "/v1/admin/config", token: adminToken, body: marchallObj(t, sc), wantCode: http.StatusOK, wantData: marchallObj(t, sc)},
	})

	t.Run("disabled gateway is refused", func(t *testing.T) {
		paid := testutil.CreateCourse(t, testutil.Login(t, app.store, teacher.Email), "Go Pro", 10)
		body := marchallObj(t, EnrollRequest{Transaction: &course.Transaction{Amount: 10, Gateway: course.GatewayMoMo, Status: course.TransactionSuccess}})
		rec := app.do(http.MethodPost, "/v1/courses/"+paid.ID+"/enroll", studentToken, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "payment gateway MoMo is disabled")
		assert.Empty(t, app.store.Transactions())
	})

	t.Run("transactions & notifications", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/admin/transactions", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())

		rec = app.do(http.MethodGet, "/v1/admin/notifications?limit=1", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var ntfs []map[string]interface{}
		unmarshal(t, rec, &ntfs)
		assert.Len(t, ntfs, 1)
	})
}

func Test_aiApi(t *testing.T) {
	app := setup(t)
	adm, _ := testutil.SuperAdmin(t, app.store)
	student := testutil.CreateUser(t, app.store, "Student", "student@test.cd", user.RoleStudent)
	adminToken := getToken(t, app.conf, adm)
	studentToken := getToken(t, app.conf, student)

	app.run(t, []httpTest{
		{name: "chat: guest", method: http.MethodPost, path: "/v1/ai/chat", body: []byte(`{"prompt":"What is a goroutine?"}`), wantCode: http.StatusOK, wantData: marchallObj(t, ChatResponse{Text: "Hello from the tutor"})},
		{name: "chat: blank prompt", method: http.MethodPost, path: "/v1/ai/chat", token: studentToken, body: []byte(`{"prompt":" "}`), wantCode: http.StatusBadRequest},
		{
			name: "grade", method: http.MethodPost, path: "/v1/ai/grade", token: studentToken, body: []byte(`{"code":"x := 1","task":"Declare x"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, core.GradeResult{Score: 77, Feedback: "Solid work"}),
		},
		{
			name: "run", method: http.MethodPost, path: "/v1/ai/run", token: studentToken, body: []byte(`{"code":"print(1)","language":"python"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, core.ExecutionResult{Output: "ran: print(1)"}),
		},
		{name: "run: language required", method: http.MethodPost, path: "/v1/ai/run", token: studentToken, body: []byte(`{"code":"print(1)"}`), wantCode: http.StatusBadRequest},
		{
			name: "intent", method: http.MethodPost, path: "/v1/ai/intent", body: []byte(`{"query":"show my profile"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, core.NavigationIntent{Intent: core.IntentNavigate, Target: "profile"}),
		},
	})

	t.Run("upstream failure answers the fallback", func(t *testing.T) {
		app.ai.err = errors.Wrap(core.ErrExternalService, "model unreachable")
		defer func() { app.ai.err = nil }()

		rec := app.do(http.MethodPost, "/v1/ai/chat", studentToken, []byte(`{"prompt":"Hi"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		var res ChatResponse
		unmarshal(t, rec, &res)
		assert.Equal(t, core.FallbackChatText, res.Text)
	})

	setConfig := func(t *testing.T, enabled bool, limit int) {
		t.Helper()
		sc := app.store.SystemConfig()
		sc.AIEnabled = enabled
		sc.AIRequestLimit = limit
		rec := app.do(http.MethodPut, "/v1/admin/config", adminToken, marchallObj(t, sc))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	t.Run("disabled", func(t *testing.T) {
		setConfig(t, false, 0)
		rec := app.do(http.MethodPost, "/v1/ai/chat", studentToken, []byte(`{"prompt":"Hi"}`))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("daily quota", func(t *testing.T) {
		teacher := testutil.CreateUser(t, app.store, "Teacher", "teacher@test.cd", user.RoleTeacher)
		token := getToken(t, app.conf, teacher)
		setConfig(t, true, 1)

		rec := app.do(http.MethodPost, "/v1/ai/chat", token, []byte(`{"prompt":"Hi"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		rec = app.do(http.MethodPost, "/v1/ai/chat", token, []byte(`{"prompt":"Hi again"}`))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, string(marchallObj(t, httpErr{Error: "daily AI request limit reached"})), rec.Body.String())
	})
}

func Test_submissionApi_autoGradeFailure(t *testing.T) {
	app := setup(t)
	teacher := testutil.CreateUser(t, app.store, "Teacher", "teacher@test.cd", user.RoleTeacher)
	student := testutil.CreateUser(t, app.store, "Student", "student@test.cd", user.RoleStudent)
	c := testutil.CreateCourse(t, testutil.Login(t, app.store, teacher.Email), "Go Basics", 0, course.NewLesson{Title: "Hello", Type: course.LessonCoding})
	sub, err := testutil.Login(t, app.store, student.Email).SubmitAssignment(course.NewSubmission{
		CourseID: c.ID, LessonID: c.Lessons[0].ID, Type: course.SubmissionCoding, Code: "fmt.Println(1)",
	})
	require.NoError(t, err)

	app.ai.err = errors.Wrap(core.ErrExternalService, "model unreachable")
	rec := app.do(http.MethodPost, "/v1/submissions/"+sub.ID+"/auto-grade", getToken(t, app.conf, teacher), []byte(`{}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	stored, err := app.store.Submission(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, course.SubmissionPending, stored.Status)
	assert.Nil(t, stored.Score)
}
