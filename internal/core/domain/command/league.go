package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
	"tbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	riotTokenHeader = "X-Riot-Token"
	riotIDHint      = "Expected a Riot ID like Name#TAG"
	summonerMissing = "Could not find a summoner with that name"
)

// LeagueParams configures the League of Legends statistics handler.
type LeagueParams struct {
	APIKey string
	// PlatformURL serves summoner and mastery data, e.g. https://na1.api.riotgames.com.
	PlatformURL string
	// RegionalURL serves account data, e.g. https://americas.api.riotgames.com.
	RegionalURL string
	DDragonURL  string
	Masteries   int
}

type League struct {
	fetcher port.Fetcher
	sender  port.ReplySender
	params  LeagueParams
}

func NewLeague(fetcher port.Fetcher, sender port.ReplySender, params LeagueParams) *League {
	params.PlatformURL = strings.TrimRight(params.PlatformURL, "/")
	params.RegionalURL = strings.TrimRight(params.RegionalURL, "/")
	params.DDragonURL = strings.TrimRight(params.DDragonURL, "/")
	if params.Masteries <= 0 {
		params.Masteries = 10
	}

	return &League{fetcher: fetcher, sender: sender, params: params}
}

func (lg *League) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "league",
		Description: "Get a player's top champion masteries",
		Aliases:     []string{"lol", "lolstats", "leaguestats"},
		Args: []domain.Argument{
			{Name: "riot_id", Description: "Riot ID, e.g. Faker#KR1", Required: true},
		},
	}
}

func (lg *League) Respond(ctx context.Context, cmd *domain.Command) error {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("command", lg.Describe().Name).
		Logger()

	name, tag, ok := strings.Cut(strings.TrimSpace(cmd.Arg(0)), "#")
	name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
	if !ok || name == "" || tag == "" {
		return lg.text(ctx, cmd, riotIDHint)
	}

	actionCtx, stop := context.WithCancel(ctx)
	defer stop()
	go lg.sender.SendChatAction(actionCtx, cmd, domain.Typing)

	account, err := lg.fetch(ctx, fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		lg.params.RegionalURL, url.PathEscape(name), url.PathEscape(tag)))
	if isNotFound(err) {
		l.Debug().Str("name", name).Str("tag", tag).Msg("riot id not found")
		return lg.text(ctx, cmd, summonerMissing)
	}
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching account: %w", err), cmd)
	}

	puuid, err := account.String(jsonpath.ParsePath("puuid"))
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading account: %w", err), cmd)
	}
	gameName, err := account.String(jsonpath.ParsePath("gameName"))
	if err != nil {
		gameName = name
	}

	summoner, err := lg.fetch(ctx, fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s",
		lg.params.PlatformURL, url.PathEscape(puuid)))
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching summoner: %w", err), cmd)
	}

	icon, err := summoner.String(jsonpath.ParsePath("profileIconId"))
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading summoner: %w", err), cmd)
	}
	level, err := summoner.String(jsonpath.ParsePath("summonerLevel"))
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading summoner: %w", err), cmd)
	}

	masteries, err := lg.fetch(ctx, fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s/top?count=%d",
		lg.params.PlatformURL, url.PathEscape(puuid), lg.params.Masteries))
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching masteries: %w", err), cmd)
	}

	rows, err := masteries.Len(jsonpath.Path{})
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading masteries: %w", err), cmd)
	}

	version, champions, err := lg.championTable(ctx)
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error fetching champion data: %w", err), cmd)
	}

	builder := domain.NewEmbed(fmt.Sprintf("%s's Stats", gameName)).
		SetThumbnail(fmt.Sprintf("%s/cdn/%s/img/profileicon/%s.png", lg.params.DDragonURL, version, icon)).
		SetDescription("Level " + level).
		SetFooter(fmt.Sprintf("Riot ID %s#%s", gameName, tag))

	if rows == 0 {
		builder.AddField("**-Masteries-**", "No champion mastery yet", false)
	} else {
		builder.AddField("**-Masteries-**", ":mage:", false)

		champs, err := domain.BuildColumn(rows, func(i int) (string, error) {
			id, err := masteries.String(jsonpath.Path{jsonpath.Index(i), jsonpath.Key("championId")})
			if err != nil {
				return "", err
			}
			champ, err := champions.Lookup(jsonpath.ParsePath("data"), "key", id, "name")
			if err != nil {
				return "", err
			}
			return domain.Numbered(i, champ), nil
		})
		if err != nil {
			return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading champions: %w", err), cmd)
		}

		points, err := masteries.Column(rows, jsonpath.Path{}, jsonpath.ParsePath("championPoints"), nil)
		if err != nil {
			return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading points: %w", err), cmd)
		}

		levels, err := masteries.Column(rows, jsonpath.Path{}, jsonpath.ParsePath("championLevel"), domain.Parenthesized)
		if err != nil {
			return lg.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading levels: %w", err), cmd)
		}

		builder.AddColumn("Champion", champs, true).
			AddColumn("Points", points, true).
			AddColumn("Level", levels, true)
	}

	embed, err := builder.Build()
	if err != nil {
		return lg.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	l.Debug().Int("masteries", rows).Str("version", version).Msg("built league stats")

	err = lg.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("error sending league stats: %w", err)
	}

	return nil
}

// championTable returns the latest Data Dragon version and its champion list.
func (lg *League) championTable(ctx context.Context) (string, jsonpath.Document, error) {
	versions, err := lg.fetcher.FetchJSON(ctx, domain.Get(lg.params.DDragonURL+"/api/versions.json"))
	if err != nil {
		return "", jsonpath.Document{}, err
	}

	version, err := versions.String(jsonpath.Path{jsonpath.Index(0)})
	if err != nil {
		return "", jsonpath.Document{}, err
	}

	champions, err := lg.fetcher.FetchJSON(ctx,
		domain.Get(fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", lg.params.DDragonURL, version)))
	if err != nil {
		return "", jsonpath.Document{}, err
	}

	return version, champions, nil
}

func (lg *League) fetch(ctx context.Context, u string) (jsonpath.Document, error) {
	return lg.fetcher.FetchJSON(ctx, domain.Get(u).WithHeader(riotTokenHeader, lg.params.APIKey))
}

func (lg *League) text(ctx context.Context, cmd *domain.Command, text string) error {
	err := lg.sender.SendReply(ctx, cmd, domain.Reply{Content: text})
	if err != nil {
		return fmt.Errorf("error sending reply: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// riotRoutes maps platform routing values to their regional cluster.
var riotRoutes = map[string]string{
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe", "me1": "europe",
	"kr": "asia", "jp1": "asia",
	"oc1": "sea", "ph2": "sea", "sg2": "sea", "th2": "sea", "tw2": "sea", "vn2": "sea",
}

// RiotHosts returns the platform and regional base URLs for a platform routing value such as
// "na1". An explicit region overrides the lookup.
func RiotHosts(platform, region string) (platformURL, regionalURL string, err error) {
	platform = strings.ToLower(platform)
	if region == "" {
		region = riotRoutes[platform]
	}
	if platform == "" || region == "" {
		return "", "", fmt.Errorf("unknown riot platform %q", platform)
	}

	return "https://" + platform + ".api.riotgames.com",
		"https://" + strings.ToLower(region) + ".api.riotgames.com", nil
}
