package telegram

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calorie-vision/internal/container"
	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/infrastructure/caloriedb"
	"calorie-vision/internal/infrastructure/imagefile"
	"calorie-vision/internal/infrastructure/storage"
)

type fakeSender struct {
	sent       []tgbotapi.Chattable
	failPhotos bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if _, ok := c.(tgbotapi.PhotoConfig); ok && f.failPhotos {
		return tgbotapi.Message{}, errors.New("telegram is down")
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error) {
	return tgbotapi.File{FileID: config.FileID}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) photos() []tgbotapi.PhotoConfig {
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

type fakeDetector struct {
	detections []entity.RawDetection
}

func (f *fakeDetector) Infer(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	return f.detections, nil
}

func (f *fakeDetector) Label(classIndex int) (string, error) {
	return []string{"apple", "banana"}[classIndex], nil
}

func newTestBot(t *testing.T, det *fakeDetector) (*Bot, *fakeSender) {
	t.Helper()
	table := caloriedb.New(map[string]float64{"apple": 52})
	c, err := container.New(storage.NewMemorySessionRepository(), det, table, t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	s := &fakeSender{}
	b := newBot(s, c, zap.NewNop())
	b.download = func(fileID string) ([]byte, error) {
		if fileID != "big" {
			return nil, errors.New("unexpected file " + fileID)
		}
		return imagefile.NewStore().EncodeJPEG(imaging.New(400, 300, color.NRGBA{G: 120, A: 255}))
	}
	return b, s
}

func command(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 10},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}
}

func photo() *tgbotapi.Message {
	return &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 1},
		Chat:  &tgbotapi.Chat{ID: 10},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}},
	}
}

func apple() *fakeDetector {
	return &fakeDetector{detections: []entity.RawDetection{
		{Box: entity.BoundingBox{X1: 10, Y1: 40, X2: 60, Y2: 60}, ClassIndex: 0, Confidence: 0.88},
	}}
}

func session(t *testing.T, b *Bot) *entity.Session {
	t.Helper()
	s, err := b.sessions.Get(context.Background(), 1, 10)
	require.NoError(t, err)
	return s
}

func TestBot_Commands(t *testing.T) {
	b, s := newTestBot(t, apple())
	ctx := context.Background()

	b.handleMessage(ctx, command("/check"))
	require.Equal(t, entity.StateAwaitingPhoto, session(t, b).State)

	b.handleMessage(ctx, command("/cancel"))
	require.Equal(t, entity.StateMainMenu, session(t, b).State)

	b.handleMessage(ctx, command("/start"))
	b.handleMessage(ctx, command("/help"))
	b.handleMessage(ctx, command("/dance"))
	b.handleMessage(ctx, command("/last"))

	require.Equal(t, []string{msgAwaitingPhoto, msgCancelled, msgStart, msgHelp, msgUnknownCommand, msgNoLast}, s.texts())
}

func TestBot_Classes(t *testing.T) {
	b, s := newTestBot(t, apple())

	b.handleMessage(context.Background(), command("/classes"))
	require.Len(t, s.texts(), 1)
	require.Contains(t, s.texts()[0], "<pre>")
	require.Contains(t, s.texts()[0], "apple")
}

func TestBot_Text(t *testing.T) {
	b, s := newTestBot(t, apple())

	b.handleMessage(context.Background(), &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 10}, Text: "hi"})
	require.Equal(t, []string{msgSendPhoto}, s.texts())
}

func TestBot_PhotoSuccess(t *testing.T) {
	b, s := newTestBot(t, apple())
	ctx := context.Background()

	b.handleMessage(ctx, photo())

	require.Len(t, s.photos(), 1)
	require.Equal(t, "Total Calories: 5.20", s.photos()[0].Caption)

	texts := s.texts()
	require.Len(t, texts, 2)
	require.Equal(t, msgProcessing, texts[0])
	require.Contains(t, texts[1], "apple")
	require.Contains(t, texts[1], "10.00")

	got := session(t, b)
	require.Equal(t, entity.StateMainMenu, got.State)
	require.NotNil(t, got.LastResult)
	require.Equal(t, 5.2, got.LastResult.TotalCalories)

	b.handleMessage(ctx, command("/last"))
	require.Contains(t, s.texts()[2], "Total Calories: 5.20")
}

func TestBot_NothingFound(t *testing.T) {
	b, s := newTestBot(t, &fakeDetector{})

	b.handleMessage(context.Background(), photo())

	require.Len(t, s.photos(), 1)
	require.Equal(t, "Total Calories: 0.00", s.photos()[0].Caption)

	texts := s.texts()
	require.Len(t, texts, 3)
	require.Equal(t, msgProcessing, texts[0])
	require.Contains(t, texts[1], "Fruit/Vegetable")
	require.Contains(t, texts[1], "Total Calories: 0.00")
	require.Equal(t, msgNothingFound, texts[2])

	got := session(t, b)
	require.NotNil(t, got.LastResult)
	require.Zero(t, got.LastResult.TotalCalories)
}

func TestBot_LastIsPerChat(t *testing.T) {
	b, s := newTestBot(t, apple())
	ctx := context.Background()

	b.handleMessage(ctx, photo())

	// Тот же пользователь пишет /last в группе: подсчёт из лички туда не попадает
	group := command("/last")
	group.Chat = &tgbotapi.Chat{ID: -100}
	b.handleMessage(ctx, group)

	texts := s.texts()
	require.Equal(t, msgNoLast, texts[len(texts)-1])

	b.handleMessage(ctx, command("/last"))
	texts = s.texts()
	require.Contains(t, texts[len(texts)-1], "Total Calories: 5.20")
}

func TestBot_UnknownClass(t *testing.T) {
	det := &fakeDetector{detections: []entity.RawDetection{
		{Box: entity.BoundingBox{X1: 0, Y1: 0, X2: 30, Y2: 30}, ClassIndex: 1},
	}}
	b, s := newTestBot(t, det)

	b.handleMessage(context.Background(), photo())
	require.Empty(t, s.photos())

	texts := s.texts()
	require.Len(t, texts, 2)
	require.Contains(t, texts[1], "banana")
	require.Equal(t, entity.StateMainMenu, session(t, b).State)
	require.Nil(t, session(t, b).LastResult)
}

func TestBot_InvalidImage(t *testing.T) {
	b, s := newTestBot(t, apple())
	b.download = func(string) ([]byte, error) { return []byte("not a jpeg"), nil }

	b.handleMessage(context.Background(), photo())
	require.Equal(t, []string{msgProcessing, msgInvalidImage}, s.texts())
}

func TestBot_DownloadError(t *testing.T) {
	b, s := newTestBot(t, apple())
	b.download = func(string) ([]byte, error) { return nil, errors.New("timeout") }

	b.handleMessage(context.Background(), photo())
	require.Equal(t, []string{msgProcessing, msgProcessingError}, s.texts())
}

func TestBot_DisplayErrorResetsSession(t *testing.T) {
	b, s := newTestBot(t, apple())
	ctx := context.Background()

	b.handleMessage(ctx, photo())
	require.NotNil(t, session(t, b).LastResult)

	s.failPhotos = true
	b.handleMessage(ctx, photo())

	texts := s.texts()
	require.Equal(t, msgDisplayError, texts[len(texts)-1])
	require.Equal(t, entity.StateMainMenu, session(t, b).State)
	require.Nil(t, session(t, b).LastResult)
}

func TestBot_Documents(t *testing.T) {
	b, s := newTestBot(t, apple())
	ctx := context.Background()

	doc := &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 10},
		Document: &tgbotapi.Document{FileID: "big", FileName: "lunch.png", MimeType: "image/png"},
	}
	b.handleMessage(ctx, doc)
	require.Len(t, s.photos(), 1)

	pdf := &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 10},
		Document: &tgbotapi.Document{FileID: "menu", FileName: "menu.pdf", MimeType: "application/pdf"},
	}
	b.handleMessage(ctx, pdf)
	texts := s.texts()
	require.Equal(t, msgNotImage, texts[len(texts)-1])
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, msgInvalidImage, userMessage(entity.ErrInvalidImage))
	require.Equal(t, msgProcessingError, userMessage(errors.New("boom")))
	require.Contains(t, userMessage(entity.ErrClassNotFound), "calorie table")
}
