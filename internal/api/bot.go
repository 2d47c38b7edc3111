package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "calorie-vision/internal/application"
	"calorie-vision/internal/container"
	"calorie-vision/internal/domain/entity"
	"calorie-vision/internal/infrastructure/caloriedb"
	"calorie-vision/internal/infrastructure/imagefile"
	"calorie-vision/internal/report"
)

const (
	msgStart = `👋 Привет! Я считаю калории на фото фруктов и овощей.

📸 Отправьте фото, и я найду продукты, оценю их вес и калорийность.

📋 Команды:
/check — начать подсчёт
/classes — какие продукты я знаю
/last — последний подсчёт
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото (или файл-изображение)
2️⃣ Бот найдёт фрукты и овощи
3️⃣ Вы получите фото с рамками и таблицу: продукт, уверенность, вес, калории

💡 Вес оценивается грубо, по площади рамки: от 10 до 500 г на объект.

📋 Команды:
/check — начать подсчёт
/classes — список продуктов
/last — последний подсчёт
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото еды для подсчёта калорий."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для нового подсчёта."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото фруктов или овощей."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNothingFound    = "🤷 Ни одного фрукта или овоща не найдено."
	msgNoLast          = "Подсчётов пока не было. Отправьте фото."
	msgEmptyTable      = "⚠️ Таблица калорийности пуста."
	msgNotImage        = "📎 Этот файл не похож на изображение. Отправьте jpg, png или webp."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Попробуйте другой файл."
	msgDisplayError    = "⚠️ Не удалось показать результат. Попробуйте ещё раз."
	msgUnknownFood     = "⚠️ Для одного из найденных продуктов нет данных о калорийности (%s)."
)

// Максимальный размер картинки, отправляемой обратно в чат
const previewSide = 1280

// sender часть BotAPI, которую использует бот
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	download func(fileID string) ([]byte, error)

	sessions *app.SessionService
	pipeline *app.Pipeline
	images   *imagefile.Store
	table    *caloriedb.Table
	logger   *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized", zap.String("account", api.Self.UserName))

	b := newBot(api, c, logger)
	b.api = api
	b.download = b.downloadFile
	return b, nil
}

func newBot(s sender, c *container.Container, logger *zap.Logger) *Bot {
	return &Bot{
		sender:   s,
		sessions: c.SessionService,
		pipeline: c.Pipeline,
		images:   c.Images,
		table:    c.Table,
		logger:   logger,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get session", zap.Error(err))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	// Обработка фото или файла-изображения
	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, fileID)
		return
	}
	if msg.Document != nil {
		b.sendMessage(msg.Chat.ID, msgNotImage)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.sessions.BeginCheck(ctx, userID, chatID); err != nil {
			b.logger.Error("begin check", zap.Error(err))
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		b.cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "classes":
		if b.table.Len() == 0 {
			b.sendMessage(chatID, msgEmptyTable)
			return
		}
		b.sendPre(chatID, report.Classes(b.table.Names(), b.table.Lookup))

	case "last":
		if session.LastResult == nil {
			b.sendMessage(chatID, msgNoLast)
			return
		}
		b.sendPre(chatID, report.Table(session.LastResult))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает изображение, считает калории и отправляет результат
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if _, err := b.sessions.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		b.logger.Error("set state", zap.Error(err))
	}
	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.download(fileID)
	if err != nil {
		b.logger.Error("download photo", zap.Error(err))
		b.fail(ctx, userID, chatID, msgProcessingError)
		return
	}

	img, err := b.images.Decode(imageData)
	if err != nil {
		b.logger.Warn("decode photo", zap.Int("bytes", len(imageData)), zap.Error(err))
		b.fail(ctx, userID, chatID, msgInvalidImage)
		return
	}

	out, err := b.pipeline.RunImage(ctx, img, true)
	if err != nil {
		b.logger.Warn("estimate", zap.Int64("chat", chatID), zap.Error(err))
		b.fail(ctx, userID, chatID, userMessage(err))
		return
	}

	if err := b.sendResult(chatID, out); err != nil {
		b.logger.Error("display result", zap.Int64("chat", chatID), zap.Error(err))
		b.fail(ctx, userID, chatID, msgDisplayError)
		return
	}

	if _, err := b.sessions.Remember(ctx, userID, chatID, out.Result); err != nil {
		b.logger.Error("remember result", zap.Error(err))
	}
}

// sendResult отправляет размеченное фото с итогом в подписи и таблицу
func (b *Bot) sendResult(chatID int64, out *app.PipelineOutput) error {
	jpeg, err := b.images.EncodeJPEG(imagefile.Thumbnail(out.Annotated, previewSide, previewSide))
	if err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: app.ResultFileName, Bytes: jpeg})
	photo.Caption = report.Total(out.Result)
	if _, err := b.sender.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, pre(report.Table(out.Result)))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("send table: %w", err)
	}

	// Пустой результат тоже показываем целиком (фото, пустая таблица, итог 0), плюс подсказка
	if out.Result.Empty() {
		b.sendMessage(chatID, msgNothingFound)
	}
	return nil
}

// fail сообщает об ошибке и сбрасывает сессию
func (b *Bot) fail(ctx context.Context, userID, chatID int64, text string) {
	b.sendMessage(chatID, text)
	if _, err := b.sessions.Reset(ctx, userID, chatID); err != nil {
		b.logger.Error("reset session", zap.Error(err))
	}
}

func (b *Bot) cancel(ctx context.Context, userID, chatID int64) {
	if _, err := b.sessions.Cancel(ctx, userID, chatID); err != nil {
		b.logger.Error("cancel", zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.sender.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("send message", zap.Error(err))
	}
}

// sendPre отправляет моноширинный блок
func (b *Bot) sendPre(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, pre(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("send message", zap.Error(err))
	}
}

// imageFileID достаёт файл максимального разрешения из фото или документ-изображение
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if doc := msg.Document; doc != nil {
		if strings.HasPrefix(doc.MimeType, "image/") || imagefile.IsImageFile(doc.FileName) {
			return doc.FileID, true
		}
	}
	return "", false
}

// userMessage текст ошибки оценки для пользователя
func userMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrClassNotFound):
		return fmt.Sprintf(msgUnknownFood, err)
	case errors.Is(err, entity.ErrInvalidImage):
		return msgInvalidImage
	default:
		return msgProcessingError
	}
}

func pre(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}
