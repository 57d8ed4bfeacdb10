package channel

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"jobbot/model"
	"jobbot/storage"
)

type sentMessage struct {
	chatID int64
	text   string
	markup *tele.ReplyMarkup
}

type editedMessage struct {
	messageID string
	chatID    int64
	text      string
	markup    *tele.ReplyMarkup
}

type fakeAPI struct {
	sent    []sentMessage
	edited  []editedMessage
	sendErr error
	editErr error
	nextID  int
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	chatID, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	msg := sentMessage{chatID: chatID, text: what.(string)}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			msg.markup = so.ReplyMarkup
		}
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeAPI) Edit(m tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	messageID, chatID := m.MessageSig()
	edit := editedMessage{messageID: messageID, chatID: chatID, text: what.(string)}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			edit.markup = so.ReplyMarkup
		}
	}
	f.edited = append(f.edited, edit)
	return &tele.Message{}, nil
}

func newTestNotifier(t *testing.T, api *fakeAPI) (*Notifier, storage.Vacancies) {
	t.Helper()
	store := storage.NewMemory().Store()
	n := New(api, nil, store.Vacancies, Options{
		ChannelID:    -100123,
		LogChannelID: -100456,
		BotUsername:  "jobbot_test_bot",
		Now:          func() string { return "2026-08-30 12:00:00" },
	})
	return n, store.Vacancies
}

func newVacancy(t *testing.T, vacancies storage.Vacancies) *model.Vacancy {
	t.Helper()
	v := &model.Vacancy{
		Description: "Mine iron",
		Priority:    model.PriorityMedium,
		Category:    model.CategoryResources,
		Salary:      decimal.NewFromInt(150),
		Status:      model.StatusOpen,
		CreatedByID: 1,
	}
	require.NoError(t, vacancies.Create(context.Background(), v))
	return v
}

func TestVacancyCreatedPublishesAndRecordsMessageID(t *testing.T) {
	api := &fakeAPI{}
	n, vacancies := newTestNotifier(t, api)
	v := newVacancy(t, vacancies)

	n.VacancyCreated(context.Background(), v)

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(-100123), api.sent[0].chatID)
	assert.Contains(t, api.sent[0].text, "Mine iron")
	require.NotNil(t, api.sent[0].markup)
	btn := api.sent[0].markup.InlineKeyboard[0][0]
	assert.Contains(t, btn.URL, "?start=job_"+strconv.FormatInt(v.ID, 10))

	stored, err := vacancies.Get(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ChannelMessageID)
	assert.Equal(t, 1, *stored.ChannelMessageID)
}

func TestVacancyChangedDropsClaimButtonWhenNotOpen(t *testing.T) {
	api := &fakeAPI{}
	n, vacancies := newTestNotifier(t, api)
	v := newVacancy(t, vacancies)
	ctx := context.Background()

	n.VacancyCreated(ctx, v)
	require.NoError(t, vacancies.Assign(ctx, v.ID, 42))

	n.VacancyChanged(ctx, v.ID)

	require.Len(t, api.edited, 1)
	assert.Contains(t, api.edited[0].text, "In progress")
	assert.Nil(t, api.edited[0].markup)
}

func TestVacancyChangedKeepsClaimButtonWhenOpen(t *testing.T) {
	api := &fakeAPI{}
	n, vacancies := newTestNotifier(t, api)
	v := newVacancy(t, vacancies)
	ctx := context.Background()

	n.VacancyCreated(ctx, v)
	require.NoError(t, vacancies.Assign(ctx, v.ID, 42))
	require.NoError(t, vacancies.Release(ctx, v.ID, 42))

	n.VacancyChanged(ctx, v.ID)

	require.Len(t, api.edited, 1)
	require.NotNil(t, api.edited[0].markup)
}

func TestVacancyChangedWithoutMirrorPostIsNoop(t *testing.T) {
	api := &fakeAPI{}
	n, vacancies := newTestNotifier(t, api)
	v := newVacancy(t, vacancies)

	n.VacancyChanged(context.Background(), v.ID)

	assert.Empty(t, api.edited)
}

func TestSyncFailureIsSwallowed(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("post no longer exists")}
	n, vacancies := newTestNotifier(t, api)
	v := newVacancy(t, vacancies)

	// Must not panic or propagate.
	n.VacancyCreated(context.Background(), v)
	n.Notify(context.Background(), 42, "hello")

	assert.Empty(t, api.sent)
}

func TestAuditLine(t *testing.T) {
	api := &fakeAPI{}
	n, _ := newTestNotifier(t, api)

	n.Audit(context.Background(), "claimed job #id001", 42, "miner_1")

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(-100456), api.sent[0].chatID)
	assert.Contains(t, api.sent[0].text, "🕒 2026-08-30 12:00:00")
	assert.Contains(t, api.sent[0].text, `miner\_1 (ID: 42)`)
	assert.Contains(t, api.sent[0].text, "claimed job #id001")
}
