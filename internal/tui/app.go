package tui

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/wkpd/internal/article"
	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/debuglog"
	"github.com/pders01/wkpd/internal/media"
	"github.com/pders01/wkpd/internal/search"
	"github.com/pders01/wkpd/internal/session"
	"github.com/pders01/wkpd/internal/storage"
	"github.com/pders01/wkpd/internal/wiki"
)

// WikiClient is the subset of the wiki client the UI talks to.
type WikiClient interface {
	Site() wiki.Site
	MostViewed(ctx context.Context) ([]wiki.TrendingPage, error)
	Suggest(ctx context.Context, query string) ([]wiki.Candidate, error)
	Parse(ctx context.Context, title string) (*wiki.Article, error)
	FeaturedArticles(ctx context.Context) ([]wiki.FeaturedEntry, error)
}

// Opener hands a URL to an external program.
type Opener interface {
	Open(target string) error
}

type App struct {
	config     *config.Config
	client     WikiClient
	session    *session.Session
	sanitizer  article.Sanitizer
	store      *storage.Store
	launcher   Opener
	finder     search.Searcher
	keyHandler *KeyHandler
	rnd        *rand.Rand

	suggestList  list.Model
	historyList  list.Model
	featuredList list.Model
	findList     list.Model
	searchInput  textinput.Model
	findInput    textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model

	view         View
	previousView View

	// current is nil until an article has rendered and again after a
	// failed load.
	current        *article.Display
	rendered       string
	loadingArticle bool
	readerMessage  string

	status     string
	statusKind StatusKind
	err        error

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp wires the UI to client. store may be nil when history is disabled.
func NewApp(client WikiClient, store *storage.Store, cfg *config.Config) *App {
	suggestList := newList("› suggestions")
	historyList := newList("› history")
	historyList.SetFilteringEnabled(true)
	featuredList := newList("› featured articles")
	findList := newList("› matches")

	si := textinput.New()
	si.Placeholder = "Search Wikipedia..."
	si.CharLimit = 256

	fi := textinput.New()
	fi.Placeholder = "Find in article..."
	fi.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	finder, err := search.New(cfg)
	if err != nil {
		debuglog.Warnf("search engine %q unavailable, using basic: %v", cfg.Search.Engine, err)
		finder = search.NewEngine()
	}

	ApplyTheme(cfg.UI.Colors)

	app := &App{
		config:       cfg,
		client:       client,
		session:      session.New(client.Site(), cfg),
		sanitizer:    article.Sanitizer{Site: client.Site(), RelatedLimit: cfg.Wiki.RelatedLimit},
		store:        store,
		launcher:     media.NewLauncher(cfg),
		finder:       finder,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		suggestList:  suggestList,
		historyList:  historyList,
		featuredList: featuredList,
		findList:     findList,
		searchInput:  si,
		findInput:    fi,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewReader,
		previousView: ViewReader,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Close releases the session timer and the find index.
func (a *App) Close() {
	a.session.Close()
	if c, ok := a.finder.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	minWidth := a.config.UI.Article.WordWrapMinWidth
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < minWidth+10 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadTrending(),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.loadingArticle {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case trendingLoadedMsg:
		if !a.session.Requests.IsLatest(session.PipelineTrending, msg.id) {
			return a, nil
		}
		if msg.err != nil {
			debuglog.Warnf("trending: %v", msg.err)
			a.readerMessage = MsgTrendingError
			return a, nil
		}
		if msg.title == "" {
			return a, nil
		}
		return a, a.openArticle(msg.title)

	case suggestDebounceMsg:
		return a, a.fetchSuggestions(msg.query)

	case suggestionsLoadedMsg:
		if !a.session.Requests.IsLatest(session.PipelineSuggest, msg.id) {
			debuglog.Debugf("dropping stale suggestions for %q", msg.query)
			return a, nil
		}
		if msg.err != nil {
			debuglog.Warnf("suggestions for %q: %v", msg.query, msg.err)
			return a, nil
		}
		items := make([]list.Item, len(msg.candidates))
		for i, c := range msg.candidates {
			items[i] = candidateItem{candidate: c}
		}
		a.suggestList.SetItems(items)

	case articleLoadedMsg:
		return a, a.applyArticle(msg)

	case featuredLoadedMsg:
		if !a.session.Requests.IsLatest(session.PipelineFeatured, msg.id) {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			a.clearStatus()
			return a, nil
		}
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = featuredItem{entry: e}
		}
		a.featuredList.SetItems(items)
		a.setStatus(MsgResultsCount(len(items)), StatusInfo)

	case historyLoadedMsg:
		items := make([]list.Item, len(msg.visits))
		for i, v := range msg.visits {
			items[i] = visitItem{visit: v}
		}
		a.historyList.SetItems(items)
		a.setStatus(MsgResultsCount(len(items)), StatusInfo)

	case visitDeletedMsg:
		a.setStatus(MsgVisitDeleted, StatusSuccess)
		return a, a.loadHistory()

	case findResultsMsg:
		if a.view != ViewFind || msg.query != sanitizeQuery(a.findInput.Value()) {
			return a, nil
		}
		items := make([]list.Item, len(msg.hits))
		for i, h := range msg.hits {
			items[i] = hitItem{hit: h}
		}
		a.findList.SetItems(items)
		engine := "basic"
		if _, ok := a.finder.(*search.BleveEngine); ok {
			engine = "bleve"
		}
		a.setStatus(MsgFindSummary(len(items), engine), StatusInfo)

	case statusMsg:
		a.setStatus(msg.text, msg.kind)

	case errorMsg:
		a.err = msg.err
	}

	switch a.view {
	case ViewReader:
		switch msg.(type) {
		case tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	case ViewHistory:
		var cmd tea.Cmd
		a.historyList, cmd = a.historyList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	// Search and find views spend 7 lines on header, input and hint
	listHeight := height - 10
	if listHeight < 5 {
		listHeight = 5
	}
	a.suggestList.SetSize(width, listHeight)
	a.findList.SetSize(width, listHeight)
	a.historyList.SetSize(width, height-3)
	a.featuredList.SetSize(width, height-3)

	a.viewport.Width = width
	a.viewport.Height = a.readerHeight()

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
	a.findInput.Width = inputWidth

	if a.current != nil && !a.loadingArticle {
		if r, err := a.getRenderer(); err == nil {
			if out, err := r.Render(readerMarkdown(a.current)); err == nil {
				a.rendered = out
				a.viewport.SetContent(out)
			}
		}
	}
}

// readerHeight is the viewport height left after the status bar and the
// related cards.
func (a *App) readerHeight() int {
	h := a.height - 3
	if a.current != nil && len(a.current.Related) > 0 {
		h -= lipgloss.Height(renderCards(a.current.Related, a.width)) + 1
	}
	if h < 3 {
		h = 3
	}
	return h
}

// applyArticle swaps in a finished article load, or the error message when
// it failed. Superseded loads are dropped.
func (a *App) applyArticle(msg articleLoadedMsg) tea.Cmd {
	if !a.session.Requests.IsLatest(session.PipelineArticle, msg.id) {
		debuglog.Debugf("dropping stale article %q", msg.title)
		return nil
	}

	a.loadingArticle = false
	a.clearStatus()

	if msg.err != nil {
		debuglog.WithFields(map[string]interface{}{
			"title": msg.title,
			"site":  a.session.Site.Code,
		}).Warnf("article load failed: %v", msg.err)
		a.current = nil
		a.rendered = ""
		a.readerMessage = MsgArticleError
		a.viewport.SetContent("")
		return nil
	}

	a.current = msg.display
	a.rendered = msg.content
	a.readerMessage = ""
	a.viewport.Height = a.readerHeight()
	a.viewport.SetContent(msg.content)
	a.viewport.GotoTop()
	a.setStatus(MsgOpened(msg.display.Title, a.session.Site.Code), StatusInfo)

	if err := a.finder.Index(msg.display); err != nil {
		debuglog.Warnf("indexing %q for find: %v", msg.display.Title, err)
	}

	return a.recordVisit(msg.display.Title)
}

// openArticle starts the article pipeline for title. The reader shows the
// loading placeholder and the related cards are cleared right away. Any
// startup trending lookup still in flight is superseded.
func (a *App) openArticle(title string) tea.Cmd {
	a.session.Requests.Invalidate(session.PipelineTrending)
	id := a.session.Requests.Begin(session.PipelineArticle)

	a.view = ViewReader
	a.previousView = ViewReader
	a.current = nil
	a.rendered = ""
	a.readerMessage = ""
	a.loadingArticle = true
	a.err = nil
	a.viewport.SetContent("")
	a.viewport.Height = a.readerHeight()
	a.setStatus(MsgLoadingArticle, StatusInfo)

	renderer, err := a.getRenderer()
	if err != nil {
		debuglog.Errorf("creating renderer: %v", err)
	}

	return tea.Batch(a.spinner.Tick, a.fetchArticle(id, title, renderer))
}

// selectCandidate clears the suggestions, shows the chosen title in the
// search field and loads it.
func (a *App) selectCandidate(c wiki.Candidate) tea.Cmd {
	a.session.Debounce.Stop()
	a.session.Requests.Invalidate(session.PipelineSuggest)
	a.suggestList.SetItems([]list.Item{})
	a.searchInput.SetValue(c.Title)
	a.searchInput.Blur()
	return a.openArticle(c.Title)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

// readerMarkdown is the Markdown the reader renders: the title and body.
// Related titles are shown as cards instead.
func readerMarkdown(d *article.Display) string {
	return "# " + d.Title + "\n\n" + d.Markdown + "\n"
}

func (a *App) View() string {
	var content string
	bodyHeight := a.height - 3

	switch a.view {
	case ViewReader:
		content = a.readerView(bodyHeight)

	case ViewSearch:
		hint := "Type to search • Tab/↓: suggestions • Esc: back"
		if !a.searchInput.Focused() {
			if len(a.suggestList.Items()) > 0 {
				hint = "↑↓: navigate • Enter: open • Tab: search box • Esc: back"
			} else {
				hint = "No suggestions • Tab: search box • Esc: back"
			}
		}
		content = a.inputListView(
			renderHeader("› search", a.session.Site.Host(), a.width),
			a.searchInput, hint, a.suggestList, bodyHeight,
		)

	case ViewFind:
		subtitle := ""
		if a.current != nil {
			subtitle = a.current.Title
		}
		hint := "Type to find • Tab/↓: matches • Esc: back"
		if !a.findInput.Focused() {
			hint = "↑↓: navigate • Enter: jump • Tab: find box • Esc: back"
		}
		content = a.inputListView(
			renderHeader("› find in article", subtitle, a.width),
			a.findInput, hint, a.findList, bodyHeight,
		)

	case ViewHistory:
		if len(a.historyList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderMuted("No articles visited yet"))
		} else {
			content = a.historyList.View()
		}

	case ViewFeatured:
		if len(a.featuredList.Items()) == 0 {
			content = renderCentered(a.width, bodyHeight, renderMuted(MsgLoadingFeatured))
		} else {
			content = a.featuredList.View()
		}
	}

	customStatus := a.getCustomStatusBar()
	if customStatus != "" {
		separatorWidth := a.width - 2
		if separatorWidth < 0 {
			separatorWidth = 0
		}
		separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

		return lipgloss.JoinVertical(lipgloss.Top, content, separator, customStatus)
	}

	return content
}

func (a *App) readerView(height int) string {
	switch {
	case a.loadingArticle:
		return renderCentered(a.width, height, renderMuted(a.spinner.View()+" "+MsgLoadingArticle))
	case a.readerMessage != "":
		return renderCentered(a.width, height, ErrorMessageStyle.Render(a.readerMessage))
	case a.current == nil:
		return renderCentered(a.width, height, GetWelcomeMessage(a.keyHandler.modifierKey))
	}

	body := a.viewport.View()
	if cards := renderCards(a.current.Related, a.width); cards != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, cards)
	}
	return body
}

func (a *App) inputListView(header string, input textinput.Model, hint string, l list.Model, height int) string {
	inner := lipgloss.JoinVertical(
		lipgloss.Top,
		header,
		"",
		renderInputFrame(input.View(), input.Focused(), input.Width),
		renderHelp(hint),
		"",
		l.View(),
	)
	return lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		MaxHeight(height).
		Render(inner)
}

func (a *App) getCustomStatusBar() string {
	commands := a.keyHandler.GetHelpForCurrentView()

	if len(commands) == 0 {
		return ""
	}

	if a.err != nil {
		return StatusBarStyle.
			Width(a.width).
			Render(ErrorMessageStyle.Render(fmt.Sprintf("✗ %v", a.err)))
	}

	commandText := strings.Join(commands, " • ")
	if a.status != "" {
		room := a.width - lipgloss.Width(commandText) - 7
		if room > 8 {
			commandText = a.statusKind.style().Render(truncateEnd(a.status, room)) + "  │  " + commandText
		}
	}

	return StatusBarStyle.
		Width(a.width).
		Render(commandText)
}

type candidateItem struct {
	candidate wiki.Candidate
}

func (i candidateItem) Title() string {
	if i.candidate.ThumbnailURL != "" {
		return "🖼  " + i.candidate.Title
	}
	return "   " + i.candidate.Title
}

func (i candidateItem) Description() string {
	if i.candidate.ThumbnailURL == "" {
		return ""
	}
	return renderMuted(truncateMiddle(i.candidate.ThumbnailURL, 60))
}

func (i candidateItem) FilterValue() string { return i.candidate.Title }

type visitItem struct {
	visit *storage.Visit
}

func (i visitItem) Title() string { return i.visit.Title }

func (i visitItem) Description() string {
	times := "1 visit"
	if i.visit.Count != 1 {
		times = fmt.Sprintf("%d visits", i.visit.Count)
	}
	return renderMuted(times) + TimeStyle.Render(" • "+i.visit.VisitedAt.Format("Jan 2, 15:04"))
}

func (i visitItem) FilterValue() string { return i.visit.Title }

type featuredItem struct {
	entry wiki.FeaturedEntry
}

func (i featuredItem) Title() string { return i.entry.Title }

func (i featuredItem) Description() string {
	desc := truncateEnd(i.entry.Summary, 80)
	if !i.entry.Published.IsZero() {
		desc += TimeStyle.Render(" • " + i.entry.Published.Format("Jan 2"))
	}
	return renderMuted(desc)
}

func (i featuredItem) FilterValue() string { return i.entry.Title }

type hitItem struct {
	hit *search.Hit
}

func (i hitItem) Title() string { return i.hit.Heading }

func (i hitItem) Description() string { return renderMuted(i.hit.Snippet) }

func (i hitItem) FilterValue() string { return i.hit.Heading }

type trendingLoadedMsg struct {
	id    uint64
	title string
	err   error
}

type suggestDebounceMsg struct {
	query string
}

type suggestionsLoadedMsg struct {
	id         uint64
	query      string
	candidates []wiki.Candidate
	err        error
}

type articleLoadedMsg struct {
	id      uint64
	title   string
	display *article.Display
	content string
	err     error
}

type featuredLoadedMsg struct {
	id      uint64
	entries []wiki.FeaturedEntry
	err     error
}

type historyLoadedMsg struct {
	visits []*storage.Visit
}

type visitDeletedMsg struct{}

type findResultsMsg struct {
	query string
	hits  []*search.Hit
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
