package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/validation"
	"github.com/pders01/wkpd/internal/wiki"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	case ViewHistory:
		return kh.app.historyList.SettingFilter()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.app.view == ViewHistory {
		var cmd tea.Cmd
		kh.app.historyList, cmd = kh.app.historyList.Update(msg)
		return kh.app, cmd
	}

	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		l := kh.activeList()
		if l != nil && len(l.Items()) > 0 {
			kh.blurInput()
			l.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		if items := kh.app.suggestList.Items(); len(items) > 0 {
			if i, ok := items[0].(candidateItem); ok {
				return kh.app, kh.app.selectCandidate(i.candidate)
			}
		}
		// No suggestions yet: treat the input as a title
		title, err := validation.ValidateTitle(kh.app.searchInput.Value())
		if err != nil {
			return kh.app, nil
		}
		return kh.app, kh.app.selectCandidate(wiki.Candidate{Title: title})

	case ViewFind:
		if items := kh.app.findList.Items(); len(items) > 0 {
			if i, ok := items[0].(hitItem); ok {
				return kh.jumpToHit(i)
			}
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused input and schedules
// the follow-up lookup when its value changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		prev := kh.app.searchInput.Value()
		var cmd tea.Cmd
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)

		if kh.app.searchInput.Value() != prev {
			return kh.app, tea.Batch(cmd, kh.app.debounceSuggest(kh.app.searchInput.Value()))
		}
		return kh.app, cmd

	case ViewFind:
		prev := kh.app.findInput.Value()
		var cmd tea.Cmd
		kh.app.findInput, cmd = kh.app.findInput.Update(msg)

		if kh.app.findInput.Value() != prev {
			query := sanitizeQuery(kh.app.findInput.Value())
			return kh.app, tea.Batch(cmd, kh.app.performFind(query))
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "q":
		return kh.app, tea.Quit, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + "s":
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.modifierKey + "t":
		model, cmd := kh.enterFeatured()
		return model, cmd, true
	case kh.modifierKey + "h":
		model, cmd := kh.enterHistory()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewSearch:
		return kh.handleSearchCustomKeys(key)
	case ViewHistory:
		return kh.handleHistoryCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.modifierKey + "o":
		if kh.app.current == nil {
			kh.app.setStatus(MsgNothingToOpen, StatusWarn)
			return kh.app, nil, true
		}
		return kh.app, kh.app.openURL(kh.app.current.SourceURL), true
	case kh.modifierKey + "f":
		model, cmd := kh.enterFindMode()
		return model, cmd, true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if kh.app.current == nil || kh.app.loadingArticle {
			return kh.app, nil, false
		}
		n := int(key[0] - '1')
		if n < len(kh.app.current.Related) {
			return kh.app, kh.app.openArticle(kh.app.current.Related[n]), true
		}
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleSearchCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == kh.modifierKey+"o" {
		if i, ok := kh.app.suggestList.SelectedItem().(candidateItem); ok && i.candidate.ThumbnailURL != "" {
			return kh.app, kh.app.openURL(i.candidate.ThumbnailURL), true
		}
		kh.app.setStatus(MsgNothingToOpen, StatusWarn)
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleHistoryCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	if key == kh.modifierKey+"x" {
		if i, ok := kh.app.historyList.SelectedItem().(visitItem); ok {
			return kh.app, kh.app.deleteVisit(i.visit.Title), true
		}
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	key := msg.String()

	switch kh.app.view {
	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewSearch:
		if model, cmd, handled := kh.refocus(key, &kh.app.suggestList); handled {
			return model, cmd
		}
		kh.app.suggestList, cmd = kh.app.suggestList.Update(msg)
		if key == "enter" {
			if i, ok := kh.app.suggestList.SelectedItem().(candidateItem); ok {
				return kh.app, kh.app.selectCandidate(i.candidate)
			}
		}
		return kh.app, cmd

	case ViewFind:
		if model, cmd, handled := kh.refocus(key, &kh.app.findList); handled {
			return model, cmd
		}
		kh.app.findList, cmd = kh.app.findList.Update(msg)
		if key == "enter" {
			if i, ok := kh.app.findList.SelectedItem().(hitItem); ok {
				return kh.jumpToHit(i)
			}
		}
		return kh.app, cmd

	case ViewHistory:
		kh.app.historyList, cmd = kh.app.historyList.Update(msg)
		if key == "enter" {
			if i, ok := kh.app.historyList.SelectedItem().(visitItem); ok {
				return kh.app, kh.app.openArticle(i.visit.Title)
			}
		}
		return kh.app, cmd

	case ViewFeatured:
		kh.app.featuredList, cmd = kh.app.featuredList.Update(msg)
		if key == "enter" {
			if i, ok := kh.app.featuredList.SelectedItem().(featuredItem); ok {
				return kh.app, kh.app.openArticle(i.entry.Title)
			}
		}
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// refocus moves focus from a result list back to its input on tab, on "/"
// and on up at the top of the list.
func (kh *KeyHandler) refocus(key string, l *list.Model) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "tab", "shift+tab", "/":
		return kh.app, kh.focusInput(), true
	case "up":
		if l.Index() == 0 {
			return kh.app, kh.focusInput(), true
		}
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) activeList() *list.Model {
	switch kh.app.view {
	case ViewSearch:
		return &kh.app.suggestList
	case ViewFind:
		return &kh.app.findList
	default:
		return nil
	}
}

func (kh *KeyHandler) focusInput() tea.Cmd {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focus()
	case ViewFind:
		return kh.app.findInput.Focus()
	}
	return nil
}

func (kh *KeyHandler) blurInput() {
	kh.app.searchInput.Blur()
	kh.app.findInput.Blur()
}

// jumpToHit returns to the reader scrolled to the section of the hit.
func (kh *KeyHandler) jumpToHit(hit hitItem) (tea.Model, tea.Cmd) {
	kh.app.view = ViewReader
	kh.app.findInput.Blur()
	if line := lineOfHeading(kh.app.rendered, hit.hit.Heading); line >= 0 {
		kh.app.viewport.SetYOffset(line)
	} else {
		kh.app.viewport.GotoTop()
	}
	return kh.app, nil
}

// navigateBack returns to the reader from any other view.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		kh.app.session.Debounce.Stop()
		kh.app.view = ViewReader
		kh.app.searchInput.Blur()
		return kh.app, nil

	case ViewFind:
		kh.app.view = ViewReader
		kh.app.findInput.Blur()
		return kh.app, nil

	case ViewHistory, ViewFeatured:
		kh.app.view = kh.app.previousView
		return kh.app, nil

	default:
		kh.app.err = nil
		return kh.app, nil
	}
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.previousView = kh.app.view
	kh.app.view = ViewSearch
	kh.app.err = nil
	kh.app.searchInput.CursorEnd()
	return kh.app, kh.app.searchInput.Focus()
}

func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	if kh.app.current == nil {
		kh.app.setStatus(MsgNoResults, StatusWarn)
		return kh.app, nil
	}
	kh.app.view = ViewFind
	kh.app.findInput.Reset()
	kh.app.findList.SetItems([]list.Item{})
	return kh.app, kh.app.findInput.Focus()
}

func (kh *KeyHandler) enterFeatured() (tea.Model, tea.Cmd) {
	if kh.app.view != ViewFeatured {
		kh.app.previousView = ViewReader
	}
	kh.app.view = ViewFeatured
	kh.app.err = nil
	kh.app.setStatus(MsgLoadingFeatured, StatusInfo)
	return kh.app, kh.app.loadFeatured()
}

func (kh *KeyHandler) enterHistory() (tea.Model, tea.Cmd) {
	if kh.app.store == nil {
		kh.app.setStatus(MsgHistoryDisabled, StatusWarn)
		return kh.app, nil
	}
	if kh.app.view != ViewHistory {
		kh.app.previousView = ViewReader
	}
	kh.app.view = ViewHistory
	kh.app.err = nil
	kh.app.setStatus(MsgLoadingHistory, StatusInfo)
	return kh.app, kh.app.loadHistory()
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	m := kh.modifierKey
	switch kh.app.view {
	case ViewReader:
		help := []string{m + "s: search", m + "t: featured", m + "h: history"}
		if kh.app.current != nil {
			help = append(help, m+"f: find", m+"o: open")
			if len(kh.app.current.Related) > 0 {
				help = append(help, fmt.Sprintf("1-%d: related", min(len(kh.app.current.Related), 9)))
			}
		}
		return help

	case ViewSearch:
		return []string{"enter: open", m + "o: thumbnail", "esc: back"}

	case ViewFind:
		return []string{"enter: jump", "esc: back"}

	case ViewHistory:
		return []string{"enter: open", "/: filter", m + "x: remove", "esc: back"}

	case ViewFeatured:
		return []string{"enter: open", "esc: back"}

	default:
		return []string{}
	}
}
