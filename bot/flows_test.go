package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "jobbot/core/config"
	"jobbot/core/telegram/state"
	"jobbot/model"
	"jobbot/service"
	"jobbot/storage"
)

const testAdminID int64 = 99

// fakeContext implements the slice of tele.Context the step handlers
// touch. Everything else panics through the embedded nil interface,
// which is exactly what a test wants from an unexpected call.
type fakeContext struct {
	tele.Context

	sender *tele.User
	text   string
	cb     *tele.Callback
	store  map[string]interface{}

	sent     []string
	responds []*tele.CallbackResponse
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID},
		store:  make(map[string]interface{}),
	}
}

func (c *fakeContext) Sender() *tele.User  { return c.sender }
func (c *fakeContext) Chat() *tele.Chat    { return &tele.Chat{ID: c.sender.ID} }
func (c *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }
func (c *fakeContext) Text() string        { return c.text }
func (c *fakeContext) Message() *tele.Message {
	return &tele.Message{Sender: c.sender, Text: c.text}
}
func (c *fakeContext) Callback() *tele.Callback { return c.cb }

func (c *fakeContext) Get(key string) interface{}      { return c.store[key] }
func (c *fakeContext) Set(key string, val interface{}) { c.store[key] = val }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func (c *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) > 0 {
		c.responds = append(c.responds, resp[0])
	} else {
		c.responds = append(c.responds, &tele.CallbackResponse{})
	}
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

func (c *fakeContext) lastRespond() *tele.CallbackResponse {
	if len(c.responds) == 0 {
		return nil
	}
	return c.responds[len(c.responds)-1]
}

// step feeds a text message through the session manager, the same path
// the text route takes for a user with an active conversation.
func (a *App) step(t *testing.T, c *fakeContext, text string) {
	t.Helper()
	c.text = text
	c.cb = nil
	require.NoError(t, a.sessions.ManagerHandler(c))
}

// press simulates an inline button callback with telebot's wire framing.
func press(c *fakeContext, unique, payload string) {
	c.text = ""
	c.cb = &tele.Callback{Data: "\f" + unique + "|" + payload}
}

func newTestApp(t *testing.T) (*App, storage.Store) {
	t.Helper()
	store := storage.NewMemory().Store()
	cfg := &coreconfig.Config{}
	cfg.Telegram.AdminIDs = []int64{testAdminID}

	app, err := New(Options{
		Config:    cfg,
		Users:     service.NewUsers(store.Users, nil),
		Vacancies: service.NewVacancies(store.Vacancies, store.Users, nil),
		Sessions:  state.NewMemoryManager(),
	})
	require.NoError(t, err)
	return app, store
}

func TestRegistrationFlow(t *testing.T) {
	app, store := newTestApp(t)
	const userID int64 = 7
	c := newFakeContext(userID)

	c.text = "/start"
	require.NoError(t, app.handleStart(c))
	assert.Equal(t, stateRegNickname, app.sessions.GetState(userID))

	app.step(t, c, "bad name!")
	assert.Equal(t, stateRegNickname, app.sessions.GetState(userID), "invalid nickname must re-prompt without advancing")
	assert.Contains(t, c.lastSent(), "Invalid nickname")
	_, ok := app.sessions.GetTemp(userID, tempNickname)
	assert.False(t, ok)

	app.step(t, c, "miner_1")
	assert.Equal(t, stateRegCitizenship, app.sessions.GetState(userID))

	app.step(t, c, "Klingon")
	assert.Equal(t, stateRegCitizenship, app.sessions.GetState(userID), "off-keyboard citizenship is ignored")

	app.step(t, c, "Capital")
	assert.Equal(t, stateRegBank, app.sessions.GetState(userID))

	app.step(t, c, "ACC-9")
	assert.False(t, app.sessions.InProgress(userID))

	u, err := store.Users.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "miner_1", u.Nickname)
	assert.Equal(t, model.CitizenshipCapital, u.Citizenship)
	assert.Equal(t, "ACC-9", u.BankAccount)
}

func TestCreateJobFlow(t *testing.T) {
	app, store := newTestApp(t)
	c := newFakeContext(testAdminID)

	require.NoError(t, app.cbAdminCreateJob(c))
	assert.Equal(t, stateCreateDescription, app.sessions.GetState(testAdminID))

	app.step(t, c, "Dig the quarry")
	assert.Equal(t, stateCreatePriority, app.sessions.GetState(testAdminID))

	// A category button left over from an older message must not jump
	// the flow past the priority step.
	press(c, cbSetCategory, string(model.CategoryConstruction))
	require.NoError(t, app.cbCreateCategory(c))
	assert.Equal(t, stateCreatePriority, app.sessions.GetState(testAdminID))
	require.NotNil(t, c.lastRespond())
	assert.Equal(t, "Unsupported action", c.lastRespond().Text)
	_, ok := app.sessions.GetTemp(testAdminID, tempCategory)
	assert.False(t, ok)

	press(c, cbSetPriority, string(model.PriorityHigh))
	require.NoError(t, app.cbCreatePriority(c))
	assert.Equal(t, stateCreateCategory, app.sessions.GetState(testAdminID))

	// An unknown payload on the right step is rejected the same way.
	press(c, cbSetCategory, "Smuggling")
	require.NoError(t, app.cbCreateCategory(c))
	assert.Equal(t, stateCreateCategory, app.sessions.GetState(testAdminID))

	press(c, cbSetCategory, string(model.CategoryConstruction))
	require.NoError(t, app.cbCreateCategory(c))
	assert.Equal(t, stateCreateSalary, app.sessions.GetState(testAdminID))

	app.step(t, c, "abc")
	assert.Equal(t, stateCreateSalary, app.sessions.GetState(testAdminID), "unparseable salary must re-prompt")
	assert.Contains(t, c.lastSent(), "Enter a number")

	app.step(t, c, "-5")
	assert.Equal(t, stateCreateSalary, app.sessions.GetState(testAdminID))
	assert.Contains(t, c.lastSent(), "positive number")

	// Collected answers survive every re-prompt.
	desc, _ := app.sessions.GetTemp(testAdminID, tempDescription)
	assert.Equal(t, "Dig the quarry", desc)
	prio, _ := app.sessions.GetTemp(testAdminID, tempPriority)
	assert.Equal(t, string(model.PriorityHigh), prio)

	app.step(t, c, "150")
	assert.False(t, app.sessions.InProgress(testAdminID))

	v, err := store.Vacancies.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dig the quarry", v.Description)
	assert.Equal(t, model.PriorityHigh, v.Priority)
	assert.Equal(t, model.CategoryConstruction, v.Category)
	assert.Equal(t, model.StatusOpen, v.Status)
	assert.Equal(t, "150", v.Salary.String())
}

func TestAdminBackAbortsFlow(t *testing.T) {
	app, _ := newTestApp(t)
	c := newFakeContext(testAdminID)

	require.NoError(t, app.cbAdminCreateJob(c))
	app.step(t, c, "Dig the quarry")
	require.True(t, app.sessions.InProgress(testAdminID))

	require.NoError(t, app.cbAdminBack(c))
	assert.False(t, app.sessions.InProgress(testAdminID))
	_, ok := app.sessions.GetTemp(testAdminID, tempDescription)
	assert.False(t, ok)
}

func TestFallbacksRegistered(t *testing.T) {
	app, _ := newTestApp(t)
	assert.NotNil(t, app.Registry().TextFallback())
	assert.NotNil(t, app.Registry().CallbackNotFound())
}
