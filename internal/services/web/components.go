package web

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/les-coureurs/internal/platform/branding"
	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4"

const recordTimeLayout = "02/01/2006 15:04"

var intentLabels = map[dashboard.TradeIntent]string{
	dashboard.IntentBuy:   "Acheter",
	dashboard.IntentSell:  "Vendre",
	dashboard.IntentScout: "Repérer",
}

// pageView is everything a dashboard render reads.
type pageView struct {
	state    *dashboard.State
	printer  *message.Printer
	estimate *estimateView
	// readOnly drops every control, for hosts that cannot post back.
	readOnly bool
}

// estimateView is a planned run shown next to the manifest form.
type estimateView struct {
	request dashboard.TradeRequest
	outcome dashboard.TradeOutcome
}

func newPageView(state *dashboard.State) pageView {
	return pageView{state: state, printer: newPrinter()}
}

// newPrinter formats numbers the French way ("1 240").
func newPrinter() *message.Printer {
	return message.NewPrinter(language.French)
}

func (v pageView) number(n int) string {
	return v.printer.Sprintf("%d", n)
}

// markup writes HTML and keeps the first write error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
}

func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// rawf formats trusted markup; callers escape every interpolated string.
func (m *markup) rawf(format string, args ...any) {
	m.raw(fmt.Sprintf(format, args...))
}

func (m *markup) component(ctx context.Context, c templ.Component) {
	if m.err == nil {
		m.err = c.Render(ctx, m.w)
	}
}

func (m *markup) openSection(id, title string) {
	m.rawf(`<section id="%s"><h2>`, id)
	m.text(title)
	m.raw(`</h2>`)
}

func (m *markup) option(value, label string, selected bool) {
	m.rawf(`<option value="%s"`, templ.EscapeString(value))
	if selected {
		m.raw(` selected`)
	}
	m.raw(`>`)
	m.text(label)
	m.raw(`</option>`)
}

// postButton is a one-button form that htmx submits in place.
func (m *markup) postButton(action, label, class, id string) {
	action = templ.EscapeString(action)
	m.rawf(`<form method="post" action="%s" hx-post="%s"><button type="submit"`, action, action)
	if class != "" {
		m.rawf(` class="%s"`, class)
	}
	if id != "" {
		m.rawf(` id="%s"`, id)
	}
	m.raw(`>`)
	m.text(label)
	m.raw(`</button></form>`)
}

// dashboardPage is the full HTML document.
func dashboardPage(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<!DOCTYPE html><html lang="fr"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.text(branding.AppName + " · Tableau de Bord")
		m.raw(`</title><style>`)
		m.raw(dashboardCSS)
		m.raw(`</style>`)
		if !v.readOnly {
			m.rawf(`<script src="%s"></script>`, htmxScriptURL)
		}
		m.raw(`</head><body>`)
		m.component(ctx, dashboardBody(v))
		m.raw(`</body></html>`)
		return m.err
	})
}

// dashboardBody is the swappable <main> element.
func dashboardBody(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<main id="dashboard"`)
		if !v.readOnly {
			m.raw(` hx-target="this" hx-swap="outerHTML"`)
		}
		m.raw(`><header class="masthead"><h1>`)
		m.text(branding.FactionName + " · Tableau de Bord")
		m.raw(`</h1>`)
		if !v.readOnly {
			m.postButton("/session/reset", "Nouvelle partie", "secondary", "")
		}
		m.raw(`</header>`)
		for _, section := range []templ.Component{
			crewSection(v),
			missionSection(v),
			inventorySection(v),
			routeSection(v),
			historySection(v),
			leaderboardSection(v),
			statusFooter(v),
		} {
			m.component(ctx, section)
		}
		m.raw(`</main>`)
		return m.err
	})
}

func crewSection(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		crew := v.state.Crew
		m := &markup{w: w}
		m.openSection("crew", "Équipage")
		m.raw(`<div class="grid two"><div><strong>`)
		m.text(crew.CallSign)
		m.raw(`</strong> · `)
		m.text(crew.Captain)
		m.raw(`<div class="muted">`)
		m.text(crew.Ship)
		m.raw(`</div><p>`)
		m.text(crew.Specialty)
		m.raw(`</p><small class="muted">`)
		m.text(crew.Origins)
		m.raw(`</small></div><ul>`)
		for _, value := range crew.Values {
			m.raw(`<li>`)
			m.text(value)
			m.raw(`</li>`)
		}
		m.raw(`</ul></div></section>`)
		return m.err
	})
}

func missionSection(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		state := v.state
		selected, _ := state.Selected()
		m := &markup{w: w}
		m.openSection("missions", "Missions")
		for _, mission := range state.Content().Missions {
			active := mission.ID == selected.ID
			class := "card mission"
			if active {
				class += " active"
			}
			if state.IsCompleted(mission.ID) {
				class += " completed"
			}
			m.rawf(`<article class="%s" data-mission="%s"><div class="card-head"><strong>`, class, templ.EscapeString(mission.ID))
			m.text(mission.Title)
			m.raw(`</strong><span class="badge">`)
			m.text(mission.Difficulty)
			m.raw(`</span></div><small class="muted">`)
			m.text(mission.Locale)
			m.raw(`</small><p>`)
			m.text(mission.Hook)
			m.raw(`</p>`)

			if active {
				m.raw(`<ol class="phases">`)
				for i, phase := range mission.Phases {
					switch {
					case i < state.MissionStage:
						m.raw(`<li class="passed">`)
					case i == state.MissionStage:
						m.raw(`<li class="current">`)
					default:
						m.raw(`<li>`)
					}
					m.text(phase)
					m.raw(`</li>`)
				}
				m.raw(`</ol><div class="rewards"><em>Récompenses:</em> `)
				rewards := v.number(mission.Rewards.Credits) + " cr, +" + strconv.Itoa(mission.Rewards.Reputation) + " rep"
				if len(mission.Rewards.Items) > 0 {
					rewards += ", " + strings.Join(mission.Rewards.Items, ", ")
				}
				m.text(rewards)
				m.raw(`</div>`)
			} else if !v.readOnly {
				m.postButton("/missions/"+url.PathEscape(mission.ID)+"/select", "Choisir", "secondary", "")
			}
			m.raw(`</article>`)
		}

		m.raw(`<div class="controls">`)
		if !v.readOnly {
			m.postButton("/missions/advance", state.AdvanceLabel(), "", "advance")
			m.postButton("/missions/reset", "Recommencer", "secondary", "")
		}
		m.raw(`<span id="stage">`)
		m.text(state.StageLabel())
		m.raw(`</span></div></section>`)
		return m.err
	})
}

func inventorySection(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.openSection("inventory", "Inventaire")
		m.raw(`<p class="muted">`)
		m.text(v.printer.Sprintf("%d unités · %d étiquettes", v.state.TotalUnits(), v.state.TagCount()))
		m.raw(`</p><div class="grid cards">`)
		for _, item := range v.state.Inventory {
			m.rawf(`<div class="card item" data-item="%s" style="border-left-color: %s"><strong>`,
				templ.EscapeString(item.ID), templ.EscapeString(dashboard.RarityColor(item.Rarity)))
			m.text(item.Name)
			m.raw(`</strong><div>Qté: <span class="qty">`)
			m.text(v.number(item.Quantity))
			m.raw(`</span> · <em>`)
			m.text(item.Rarity)
			m.raw(`</em></div>`)
			if item.Notes != "" {
				m.raw(`<small class="muted">`)
				m.text(item.Notes)
				m.raw(`</small>`)
			}
			m.raw(`</div>`)
		}
		m.raw(`</div></section>`)
		return m.err
	})
}

func routeSection(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.openSection("routes", "Itinéraires")
		m.raw(`<div class="grid cards">`)
		for _, route := range v.state.Content().Routes {
			m.rawf(`<div class="card route" data-route="%s"><strong>`, templ.EscapeString(route.ID))
			m.text(route.Name)
			m.raw(`</strong> <small>· `)
			m.text(route.Distance)
			m.raw(`</small><div><em>Risque:</em> `)
			m.text(route.Risk)
			m.raw(`</div><div><em>Opportunité:</em> `)
			m.text(route.Opportunity)
			m.raw(`</div></div>`)
		}
		m.raw(`</div>`)
		if !v.readOnly {
			m.component(ctx, tradeForm(v))
		}
		m.raw(`<div id="trade-estimate">`)
		if v.estimate != nil {
			m.component(ctx, estimatePanel(v))
		}
		m.raw(`</div></section>`)
		return m.err
	})
}

// tradeForm is the run manifest. It keeps the last estimated values.
func tradeForm(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		req := dashboard.TradeRequest{Intent: dashboard.IntentBuy, Quantity: dashboard.DefaultQuantity}
		if v.estimate != nil {
			req = v.estimate.request
		}
		content := v.state.Content()

		m := &markup{w: w}
		m.raw(`<form id="trade" method="post" action="/trade/estimate" hx-post="/trade/estimate" hx-target="#trade-estimate" hx-swap="innerHTML">`)
		m.raw(`<label>Itinéraire <select name="route">`)
		for _, route := range content.Routes {
			m.option(route.ID, route.Name, route.ID == req.RouteID)
		}
		m.raw(`</select></label><label>Cargaison <select name="cargo">`)
		for _, cargo := range content.Cargo {
			m.option(cargo.ID, cargo.Label, cargo.ID == req.CargoID)
		}
		m.raw(`</select></label><label>Intention <select name="intent">`)
		for _, intent := range dashboard.TradeIntents {
			m.option(string(intent), intentLabels[intent], intent == req.Intent)
		}
		m.rawf(`</select></label><label>Quantité <input type="number" name="quantity" min="%d" max="%d" value="%d"></label>`,
			dashboard.MinQuantity, dashboard.MaxQuantity, req.Quantity)
		m.raw(`<button type="submit">Estimer</button></form>`)
		return m.err
	})
}

// estimatePanel shows a planned run and the form that books it.
func estimatePanel(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		req, outcome := v.estimate.request, v.estimate.outcome
		m := &markup{w: w}
		m.rawf(`<div class="estimate" data-profit="%d"><p>`, outcome.Profit)
		m.text(outcome.Summary)
		m.raw(`</p><dl><dt>Estimation</dt><dd>`)
		m.text(v.number(outcome.Estimate) + " cr")
		m.raw(`</dd><dt>Gain</dt><dd>`)
		m.text(v.number(outcome.Profit) + " cr")
		m.raw(`</dd>`)
		if d := outcome.CargoDelta; d != nil {
			m.raw(`<dt>Cargaison</dt><dd>`)
			m.text(fmt.Sprintf("%+d %s", d.QuantityChange, d.Name))
			m.raw(`</dd>`)
		}
		m.raw(`</dl>`)
		if !v.readOnly {
			m.raw(`<form method="post" action="/trade/commit" hx-post="/trade/commit" hx-target="#dashboard" hx-swap="outerHTML">`)
			for _, field := range [][2]string{
				{"route", req.RouteID},
				{"cargo", req.CargoID},
				{"intent", string(req.Intent)},
				{"quantity", strconv.Itoa(req.Quantity)},
			} {
				m.rawf(`<input type="hidden" name="%s" value="%s">`, field[0], templ.EscapeString(field[1]))
			}
			m.raw(`<button type="submit">Lancer la course</button></form>`)
		}
		m.raw(`</div>`)
		return m.err
	})
}

func historySection(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.openSection("history", "Journal de route")
		runs := v.state.RecentRuns()
		if len(runs) == 0 {
			m.raw(`<p class="muted">Aucune course enregistrée.</p></section>`)
			return m.err
		}
		m.raw(`<ul>`)
		for _, run := range runs {
			m.rawf(`<li data-record="%s"><strong>`, templ.EscapeString(run.ID))
			m.text(run.Destination)
			m.raw(`</strong> · `)
			m.text(run.Summary)
			m.raw(` · <span class="profit">`)
			m.text(v.printer.Sprintf("%+d cr", run.Profit))
			m.rawf(`</span> <time datetime="%s">`, run.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			m.text(run.Timestamp.Format(recordTimeLayout))
			m.raw(`</time></li>`)
		}
		m.raw(`</ul></section>`)
		return m.err
	})
}

func leaderboardSection(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.openSection("leaderboard", "Classement")
		m.raw(`<ol>`)
		for _, entry := range v.state.Leaderboard() {
			class := ""
			if entry.Crew == v.state.Crew.CallSign {
				class = ` class="player"`
			}
			m.rawf(`<li data-rank="%d"%s><strong>#%d</strong> `, entry.Rank, class, entry.Rank)
			m.text(entry.Crew)
			m.raw(` · rep `)
			m.text(strconv.Itoa(entry.Reputation))
			m.raw(` <small>(`)
			m.text(entry.LastRun)
			m.raw(`)</small></li>`)
		}
		m.raw(`</ol></section>`)
		return m.err
	})
}

func statusFooter(v pageView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<footer id="status">`)
		for _, stat := range []struct {
			key, label, value string
		}{
			{"credits", "Crédits", v.number(v.state.Credits)},
			{"reputation", "Réputation", v.number(v.state.Reputation)},
			{"completed", "Missions accomplies", v.number(len(v.state.CompletedMissions))},
		} {
			m.raw(`<div><strong>`)
			m.text(stat.label)
			m.rawf(`:</strong> <span data-stat="%s">`, stat.key)
			m.text(stat.value)
			m.raw(`</span></div>`)
		}
		m.raw(`</footer>`)
		return m.err
	})
}

const dashboardCSS = `body{font-family:system-ui,sans-serif;line-height:1.35;margin:0;padding:16px;background:#0f172a;color:#e2e8f0}
h1{font-size:22px;margin:0}h2{font-size:18px;margin:12px 0}
section{margin-bottom:24px}
.masthead{display:flex;justify-content:space-between;align-items:baseline;margin-bottom:8px}
.grid{display:grid;gap:10px}.grid.two{grid-template-columns:1fr 1fr}.grid.cards{grid-template-columns:repeat(auto-fill,minmax(240px,1fr))}
.card{border:1px solid #334155;border-left:4px solid #334155;border-radius:10px;padding:10px;margin-bottom:10px}
.card.active{border-color:#e2e8f0}.card.completed .badge{background:#166534}
.card-head{display:flex;justify-content:space-between;gap:8px}
.badge{font-size:12px;padding:2px 8px;border-radius:999px;background:#1e293b}
.muted{color:#94a3b8}
.phases li.passed{opacity:.5}.phases li.current{font-weight:600}
.controls{display:flex;gap:8px;align-items:center}
form{display:inline}#trade{display:flex;flex-wrap:wrap;gap:8px;margin-top:8px}
button{padding:8px 12px;border-radius:8px;border:0;background:#38bdf8;color:#0f172a;cursor:pointer}
button.secondary{background:#1e293b;color:#e2e8f0}
.estimate{margin-top:12px;padding:10px;border:1px dashed #38bdf8;border-radius:10px}
.player{color:#facc15}
#status{display:flex;gap:16px;padding-top:8px;border-top:1px solid #334155}`
