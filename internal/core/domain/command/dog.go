package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
	"tbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Dog struct {
	fetcher      port.Fetcher
	sender       port.ReplySender
	baseURL      string
	defaultBreed string
}

func NewDog(fetcher port.Fetcher, sender port.ReplySender, baseURL, defaultBreed string) *Dog {
	return &Dog{
		fetcher:      fetcher,
		sender:       sender,
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultBreed: defaultBreed,
	}
}

func (d *Dog) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "dog",
		Description: "Get a random dog picture",
		Aliases:     []string{"corgi", "corgipic"},
		Args: []domain.Argument{
			{Name: "breed", Description: "Breed, e.g. corgi or hound/afghan"},
		},
	}
}

var breedPattern = regexp.MustCompile(`^[a-z]+(/[a-z]+)?$`)

var errInvalidBreed = errors.New("breed must be letters only, e.g. corgi or hound/afghan")

func (d *Dog) Respond(ctx context.Context, cmd *domain.Command) error {
	l := log.With().
		Str("requestId", cmd.ID).
		Str("command", d.Describe().Name).
		Logger()

	breed := d.breed(cmd.Arg(0))
	if !breedPattern.MatchString(breed) {
		return d.sender.NotifyAndReturnError(ctx, errInvalidBreed, cmd)
	}

	actionCtx, stop := context.WithCancel(ctx)
	defer stop()
	go d.sender.SendChatAction(actionCtx, cmd, domain.SendingPhoto)

	url := fmt.Sprintf("%s/breed/%s/images/random", d.baseURL, breed)
	doc, err := d.fetcher.FetchJSON(ctx, domain.Get(url))
	if err != nil {
		err = fmt.Errorf("error fetching dog picture: %w", err)
		return d.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	status, err := doc.String(jsonpath.ParsePath("status"))
	if err != nil {
		return d.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading dog api status: %w", err), cmd)
	}
	if status != "success" {
		err = fmt.Errorf("%w: dog api status %q", domain.ErrDecode, status)
		return d.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	image, err := doc.String(jsonpath.ParsePath("message"))
	if err != nil {
		return d.sender.NotifyAndReturnError(ctx, fmt.Errorf("error reading dog picture url: %w", err), cmd)
	}

	l.Debug().Str("breed", breed).Str("image", image).Msg("fetched dog picture")

	embed, err := domain.NewEmbed(":dog:").SetImage(image).Build()
	if err != nil {
		return d.sender.NotifyAndReturnError(ctx, err, cmd)
	}

	err = d.sender.SendReply(ctx, cmd, domain.Reply{Embed: &embed})
	if err != nil {
		return fmt.Errorf("error sending dog picture: %w", err)
	}

	return nil
}

// breed lowercases the argument and joins words with a slash, so "hound afghan" addresses
// the afghan sub-breed.
func (d *Dog) breed(arg string) string {
	fields := strings.Fields(strings.ToLower(arg))
	if len(fields) == 0 {
		return d.defaultBreed
	}
	return strings.Join(fields, "/")
}
