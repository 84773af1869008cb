package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/example/vocatrain/internal/session"
	"github.com/example/vocatrain/internal/update"
	"github.com/example/vocatrain/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// A pending /voicekey prompt consumes the next plain message
	if b.awaitingKey[chatID] && !msg.IsCommand() {
		delete(b.awaitingKey, chatID)
		if err := b.speech.SetAPIKey(strings.TrimSpace(msg.Text)); err != nil {
			log.Printf("Error storing voice API key: %v", err)
			b.send(chatID, "Could not store the key, please try again.", nil)
			return
		}
		b.send(chatID, "Voice key saved. Word cards can play pronunciation now.", nil)
		return
	}

	switch msg.Command() {
	case "start":
		b.sendMenu(chatID)
	case "cards":
		b.sendCurrentCard(chatID)
	case "sentences":
		b.sendCurrentSentence(chatID)
	case "quiz":
		b.sendQuizQuestion(chatID)
	case "progress":
		b.sendProgress(chatID)
	case "update":
		b.sendUpdateStatus(chatID, b.trainer.GetUpdateStatus())
	case "reset":
		b.send(chatID, "Wipe all progress? This cannot be undone.", keyboardOf(
			MenuButton{Text: "Yes, wipe everything", CallbackData: "reset_confirm"},
		))
	case "voicekey":
		b.awaitingKey[chatID] = true
		b.send(chatID, "Send me your voice API key as the next message.", nil)
	default:
		b.sendMenu(chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// Acknowledge the tap so the client stops its spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("Error acking callback: %v", err)
	}

	action, arg := data, ""
	if i := strings.IndexByte(data, ':'); i >= 0 {
		action, arg = data[:i], data[i+1:]
	}

	switch action {
	case "menu_cards":
		b.sendCurrentCard(chatID)
	case "menu_sentences":
		b.sendCurrentSentence(chatID)
	case "menu_quiz":
		b.sendQuizQuestion(chatID)
	case "card_learned":
		if id, err := strconv.Atoi(arg); err == nil {
			if err := b.trainer.MarkLearned(id); err != nil {
				log.Printf("Error marking word learned: %v", err)
			}
		}
		b.sendCurrentCard(chatID)
	case "card_review":
		if id, err := strconv.Atoi(arg); err == nil {
			if err := b.trainer.MarkReview(id); err != nil {
				log.Printf("Error marking word for review: %v", err)
			}
		}
		b.sendCurrentCard(chatID)
	case "card_skip":
		if err := b.trainer.Advance(); err != nil {
			log.Printf("Error advancing card: %v", err)
		}
		b.sendCurrentCard(chatID)
	case "sent_learned":
		if id, err := strconv.Atoi(arg); err == nil {
			if err := b.trainer.MarkSentenceLearned(id); err != nil && err != session.ErrNeedMoreWords {
				log.Printf("Error marking sentence learned: %v", err)
			}
		}
		b.sendCurrentSentence(chatID)
	case "sent_review":
		if id, err := strconv.Atoi(arg); err == nil {
			if err := b.trainer.MarkSentenceReview(id); err != nil && err != session.ErrNeedMoreWords {
				log.Printf("Error marking sentence for review: %v", err)
			}
		}
		b.sendCurrentSentence(chatID)
	case "card_say":
		if id, err := strconv.Atoi(arg); err == nil {
			b.sendPronunciation(ctx, chatID, id)
		}
	case "quiz_answer":
		b.handleQuizAnswer(chatID, arg)
	case "update_check":
		status, err := b.trainer.CheckForUpdate(ctx)
		if err != nil {
			b.send(chatID, "Update check failed, please try again later.", nil)
			return
		}
		b.sendUpdateStatus(chatID, status)
	case "update_install":
		status, err := b.trainer.InstallUpdate(ctx)
		if err != nil {
			b.send(chatID, "Install failed: "+err.Error(), nil)
			return
		}
		b.send(chatID, "Version "+status.InstalledVersion+" installed.", nil)
	case "reset_confirm":
		b.trainer.ResetProgress()
		b.send(chatID, "All progress has been reset.", nil)
	}
}

func (b *Bot) sendMenu(chatID int64) {
	text := "What would you like to study?"
	b.send(chatID, text, keyboardRows([][]MenuButton{
		{{Text: "🃏 Flashcards", CallbackData: "menu_cards"}},
		{{Text: "📖 Sentences", CallbackData: "menu_sentences"}},
		{{Text: "❓ Quiz", CallbackData: "menu_quiz"}},
	}))
}

// sendCurrentCard renders the flashcard under the cursor. The ✅ button is
// the swipe-right gesture, 🔁 the swipe-left one.
func (b *Bot) sendCurrentCard(chatID int64) {
	card, err := b.trainer.GetCurrentCard()
	if err == session.ErrNoAvailableWords {
		b.send(chatID, "No words are available yet. Import a catalog first.", nil)
		return
	}
	if err != nil {
		log.Printf("Error getting current card: %v", err)
		b.send(chatID, "Something went wrong, try /cards again.", nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", card.Word.English)
	if card.Word.Phonetic != "" {
		fmt.Fprintf(&sb, "[%s]\n", card.Word.Phonetic)
	}
	fmt.Fprintf(&sb, "— %s\n", card.Word.Translation)
	if card.Kind == models.ItemReview {
		sb.WriteString("\n(review)")
	}

	id := strconv.Itoa(card.Word.ID)
	buttons := []MenuButton{
		{Text: "✅ I know it", CallbackData: "card_learned:" + id},
		{Text: "🔁 Review again", CallbackData: "card_review:" + id},
	}
	if b.speech.Enabled() {
		buttons = append(buttons, MenuButton{Text: "🔊", CallbackData: "card_say:" + id})
	}
	b.send(chatID, sb.String(), keyboardOf(buttons...))
}

func (b *Bot) sendCurrentSentence(chatID int64) {
	card, err := b.trainer.GetCurrentSentence()
	if err == session.ErrNeedMoreWords {
		b.send(chatID, fmt.Sprintf("Learn at least %d words to unlock sentence practice.", session.MinSentenceWords), nil)
		return
	}
	if err != nil {
		log.Printf("Error getting current sentence: %v", err)
		b.send(chatID, "Something went wrong, try /sentences again.", nil)
		return
	}

	text := card.Sentence.Text + "\n— " + card.Sentence.Translation
	id := strconv.Itoa(card.Sentence.ID)
	b.send(chatID, text, keyboardOf(
		MenuButton{Text: "✅ Got it", CallbackData: "sent_learned:" + id},
		MenuButton{Text: "🔁 Review again", CallbackData: "sent_review:" + id},
	))
}

func (b *Bot) sendQuizQuestion(chatID int64) {
	question, index, err := b.trainer.GetQuizQuestion()
	if err == session.ErrNeedMoreWords {
		b.send(chatID, fmt.Sprintf("Learn at least %d words to unlock the quiz.", session.MinQuizWords), nil)
		return
	}
	if err != nil {
		log.Printf("Error getting quiz question: %v", err)
		b.send(chatID, "Something went wrong, try /quiz again.", nil)
		return
	}

	var rows [][]MenuButton
	for i, option := range question.Options {
		rows = append(rows, []MenuButton{{
			Text:         option,
			CallbackData: "quiz_answer:" + strconv.Itoa(i),
		}})
	}
	text := fmt.Sprintf("Question %d/%d\nWhat does \"%s\" mean?", index+1, session.QuizLength, question.Prompt)
	b.send(chatID, text, keyboardRows(rows))
}

func (b *Bot) handleQuizAnswer(chatID int64, arg string) {
	choice, err := strconv.Atoi(arg)
	if err != nil {
		b.sendQuizQuestion(chatID)
		return
	}
	correct, finished, err := b.trainer.AnswerQuiz(choice)
	if err != nil {
		b.sendQuizQuestion(chatID)
		return
	}
	if correct {
		b.send(chatID, "Correct! ✅", nil)
	} else {
		b.send(chatID, "Not quite — the word goes back into review. 🔁", nil)
	}
	if finished {
		score, total := b.trainer.QuizScore()
		b.send(chatID, fmt.Sprintf("Quiz finished: %d/%d", score, total), nil)
		return
	}
	b.sendQuizQuestion(chatID)
}

// sendPronunciation fetches spoken audio for a word and sends it as a voice
// message. Failures degrade to a short notice; the card itself is unaffected.
func (b *Bot) sendPronunciation(ctx context.Context, chatID int64, wordID int) {
	word, ok := b.trainer.Word(wordID)
	if !ok {
		return
	}
	audio, err := b.speech.Pronounce(ctx, word.English)
	if err != nil {
		log.Printf("Error fetching pronunciation: %v", err)
		b.send(chatID, "Pronunciation is unavailable right now.", nil)
		return
	}
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{
		Name:  word.English + ".mp3",
		Bytes: audio,
	})
	if _, err := b.api.Send(voice); err != nil {
		log.Printf("Error sending pronunciation: %v", err)
	}
}

func (b *Bot) sendProgress(chatID int64) {
	summary := b.trainer.GetProgressSummary()
	tiers := b.trainer.GetTierInfo()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Words learned: %d\n", summary.LearnedWords)
	fmt.Fprintf(&sb, "Words in review: %d\n", summary.ReviewWords)
	fmt.Fprintf(&sb, "Sentences learned: %d\n", summary.LearnedSentences)
	fmt.Fprintf(&sb, "Day streak: %d\n", summary.StreakCount)
	fmt.Fprintf(&sb, "Study time: %d min\n", summary.TotalStudyTime)
	if summary.LastQuizScore != nil {
		fmt.Fprintf(&sb, "Last quiz: %d/%d (%d%%)\n",
			summary.LastQuizScore.Score, summary.LastQuizScore.Total, summary.LastQuizScore.Percentage)
	}
	sb.WriteString("\nTiers:\n")
	for _, tier := range tiers.Tiers {
		mark := "🔒"
		if tier.Unlocked {
			mark = "🔓"
		}
		fmt.Fprintf(&sb, "%s %s: %d/%d\n", mark, tier.Tier, tier.Learned, tier.Total)
	}
	b.send(chatID, sb.String(), nil)
}

func (b *Bot) sendUpdateStatus(chatID int64, status update.Status) {
	switch status.State {
	case update.StateUpdateAvailable:
		text := fmt.Sprintf("Version %s is available (you are on %s).", status.PendingVersion, status.InstalledVersion)
		b.send(chatID, text, keyboardOf(
			MenuButton{Text: "⬇️ Install now", CallbackData: "update_install"},
		))
	default:
		text := fmt.Sprintf("You are on version %s.", status.InstalledVersion)
		if status.LastError != "" {
			text += "\nLast check failed: " + status.LastError
		}
		b.send(chatID, text, keyboardOf(
			MenuButton{Text: "🔄 Check for updates", CallbackData: "update_check"},
		))
	}
}

func keyboardOf(buttons ...MenuButton) *tgbotapi.InlineKeyboardMarkup {
	return keyboardRows([][]MenuButton{buttons})
}

func keyboardRows(rows [][]MenuButton) *tgbotapi.InlineKeyboardMarkup {
	kb := createKeyboard(rows)
	return &kb
}
