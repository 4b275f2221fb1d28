package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
	"tbot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	f1Group       = "Formula 1 standings and schedule"
	f1Attribution = "Data: Ergast Developer API"
)

var (
	f1Total = jsonpath.ParsePath("MRData.total")
	f1Limit = jsonpath.ParsePath("MRData.limit")
)

type standings struct {
	option      string
	resource    string
	list        string
	title       string
	description string
	columns     []standingsColumn
}

type standingsColumn struct {
	label string
	item  jsonpath.Path
}

var (
	constructorStandings = standings{
		option:      "constructor",
		resource:    "constructorStandings",
		list:        "ConstructorStandings",
		title:       "Current Constructor Standings",
		description: "Get the current constructor standings",
		columns: []standingsColumn{
			{label: "Constructor", item: jsonpath.ParsePath("Constructor.name")},
			{label: "Points", item: jsonpath.ParsePath("points")},
		},
	}

	driverStandings = standings{
		option:      "driver",
		resource:    "driverStandings",
		list:        "DriverStandings",
		title:       "Current Driver Standings",
		description: "Get the current driver standings",
		columns: []standingsColumn{
			{label: "Name", item: jsonpath.ParsePath("Driver.familyName")},
			{label: "Constructor", item: jsonpath.ParsePath("Constructors.0.name")},
			{label: "Points", item: jsonpath.ParsePath("points")},
		},
	}
)

// F1Standings replies with one of the current championship tables.
type F1Standings struct {
	fetcher   port.Fetcher
	sender    port.ReplySender
	baseURL   string
	thumbnail string
	kind      standings
}

func NewConstructorStandings(fetcher port.Fetcher, sender port.ReplySender, baseURL, thumbnail string) *F1Standings {
	return newStandings(fetcher, sender, baseURL, thumbnail, constructorStandings)
}

func NewDriverStandings(fetcher port.Fetcher, sender port.ReplySender, baseURL, thumbnail string) *F1Standings {
	return newStandings(fetcher, sender, baseURL, thumbnail, driverStandings)
}

func newStandings(fetcher port.Fetcher, sender port.ReplySender, baseURL, thumbnail string, kind standings) *F1Standings {
	return &F1Standings{
		fetcher:   fetcher,
		sender:    sender,
		baseURL:   strings.TrimRight(baseURL, "/"),
		thumbnail: thumbnail,
		kind:      kind,
	}
}

func (f *F1Standings) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:             "f1",
		SubOption:        f.kind.option,
		Description:      f.kind.description,
		GroupDescription: f1Group,
	}
}

func (f *F1Standings) Respond(ctx context.Context, cmd *domain.Command) error {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("command", "f1").
		Str("option", f.kind.option).
		Logger()

	url := fmt.Sprintf("%s/current/%s.json", f.baseURL, f.kind.resource)

	doc, n, err := fetchAll(ctx, f.fetcher, url, l)
	if err != nil {
		err = fmt.Errorf("error fetching %s standings: %w", f.kind.option, err)
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	if n == 0 {
		return f.reply(ctx, cmd, domain.Reply{Content: "No standings available yet for this season."})
	}

	table := jsonpath.ParsePath("MRData.StandingsTable.StandingsLists.0")
	list := table.Join(jsonpath.Key(f.kind.list))

	builder := domain.NewEmbed(f.kind.title).SetThumbnail(f.thumbnail)
	for _, c := range f.kind.columns {
		col, err := doc.Column(n, list, c.item, nil)
		if err != nil {
			err = fmt.Errorf("error reading %s column: %w", c.label, err)
			return f.sender.NotifyAndReturnError(ctx, err, cmd)
		}
		builder.AddColumn(c.label, col, true)
	}

	season, err := doc.String(table.Join(jsonpath.Key("season")))
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}
	round, err := doc.String(table.Join(jsonpath.Key("round")))
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}
	builder.SetFooter(fmt.Sprintf("Season %s, round %s. %s", season, round, f1Attribution))

	embed, err := builder.Build()
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	l.Debug().Int("rows", n).Msg("built standings")

	return f.reply(ctx, cmd, domain.Reply{Embed: &embed})
}

func (f *F1Standings) reply(ctx context.Context, cmd *domain.Command, reply domain.Reply) error {
	err := f.sender.SendReply(ctx, cmd, reply)
	if err != nil {
		return fmt.Errorf("error sending standings: %w", err)
	}
	return nil
}

// fetchAll fetches url and, when the provider paginated the result, fetches it again with a
// limit covering every entry. It returns the document and its authoritative row count.
func fetchAll(ctx context.Context, fetcher port.Fetcher, url string, l zerolog.Logger) (jsonpath.Document, int, error) {
	doc, err := fetcher.FetchJSON(ctx, domain.Get(url))
	if err != nil {
		return jsonpath.Document{}, 0, err
	}

	total, err := doc.Int(f1Total)
	if err != nil {
		return jsonpath.Document{}, 0, err
	}

	limit, err := doc.Int(f1Limit)
	if err != nil {
		return jsonpath.Document{}, 0, err
	}

	if total <= limit {
		return doc, total, nil
	}

	l.Debug().Int("total", total).Int("limit", limit).Msg("result paginated, fetching all rows")

	doc, err = fetcher.FetchJSON(ctx, domain.Get(withLimit(url, total)))
	if err != nil {
		return jsonpath.Document{}, 0, err
	}

	return doc, total, nil
}

func withLimit(url string, limit int) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "limit=" + strconv.Itoa(limit)
}

// F1Schedule replies with the current season's race calendar.
type F1Schedule struct {
	fetcher   port.Fetcher
	sender    port.ReplySender
	baseURL   string
	thumbnail string
}

func NewSchedule(fetcher port.Fetcher, sender port.ReplySender, baseURL, thumbnail string) *F1Schedule {
	return &F1Schedule{
		fetcher:   fetcher,
		sender:    sender,
		baseURL:   strings.TrimRight(baseURL, "/"),
		thumbnail: thumbnail,
	}
}

func (f *F1Schedule) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:             "f1",
		SubOption:        "schedule",
		Description:      "Get the current race calendar",
		GroupDescription: f1Group,
	}
}

func (f *F1Schedule) Respond(ctx context.Context, cmd *domain.Command) error {
	url := f.baseURL + "/current.json"

	// The first request only reads the number of races.
	probe, err := f.fetcher.FetchJSON(ctx, domain.Get(withLimit(url, 1)))
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching schedule: %w", err), cmd)
	}

	n, err := probe.Int(f1Total)
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading race count: %w", err), cmd)
	}

	if n == 0 {
		err = f.sender.SendReply(ctx, cmd, domain.Reply{Content: "No races scheduled for this season yet."})
		if err != nil {
			return fmt.Errorf("error sending schedule: %w", err)
		}
		return nil
	}

	doc, err := f.fetcher.FetchJSON(ctx, domain.Get(withLimit(url, n)))
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching schedule: %w", err), cmd)
	}

	races := jsonpath.ParsePath("MRData.RaceTable.Races")

	season, err := doc.String(jsonpath.ParsePath("MRData.RaceTable.season"))
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	builder := domain.NewEmbed(fmt.Sprintf("%s Race Calendar", season)).SetThumbnail(f.thumbnail)
	for _, c := range []standingsColumn{
		{label: "Round", item: jsonpath.ParsePath("round")},
		{label: "Race", item: jsonpath.ParsePath("raceName")},
		{label: "Date", item: jsonpath.ParsePath("date")},
	} {
		col, err := doc.Column(n, races, c.item, nil)
		if err != nil {
			err = fmt.Errorf("error reading %s column: %w", c.label, err)
			return f.sender.NotifyAndReturnError(ctx, err, cmd)
		}
		builder.AddColumn(c.label, col, true)
	}

	embed, err := builder.SetFooter(f1Attribution).Build()
	if err != nil {
		return f.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = f.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("error sending schedule: %w", err)
	}

	return nil
}
