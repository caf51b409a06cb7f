package alarm

import (
	"log"

	"vital/internal/audio"
	"vital/internal/models"
)

// AudioPresenter is the popup-with-sound strategy: it starts the
// selected ringtone when an occurrence is presented and stops it when
// the occurrence is cleared.
type AudioPresenter struct {
	player *audio.Player
}

func NewAudioPresenter(player *audio.Player) *AudioPresenter {
	return &AudioPresenter{player: player}
}

func (a *AudioPresenter) Present(r models.DueReminder) {
	a.player.Play()
}

func (a *AudioPresenter) Clear(reminderID int) {
	a.player.Stop()
}

// LogPresenter is the toast-style strategy: a one-line notice per
// occurrence, nothing to clear.
type LogPresenter struct{}

func (LogPresenter) Present(r models.DueReminder) {
	info := models.Categories[r.Category]
	log.Printf("[alarm] %s %s (%s) due at %s", info.Icon, r.Title, r.Category, r.Time)
}

func (LogPresenter) Clear(int) {}
