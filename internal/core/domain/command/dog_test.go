package command

import (
	"tbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dogURL = "https://dog.ceo/api"

func TestDog_Respond(t *testing.T) {
	type TestCase struct {
		description string
		arg         string
		wantURL     string
	}

	testCases := []TestCase{
		{description: "default breed", arg: "", wantURL: dogURL + "/breed/corgi/images/random"},
		{description: "explicit breed", arg: "Shiba", wantURL: dogURL + "/breed/shiba/images/random"},
		{description: "sub-breed", arg: "hound afghan", wantURL: dogURL + "/breed/hound/afghan/images/random"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			fetcher := &MockFetcher{Bodies: map[string]string{
				testCase.wantURL: `{"message":"https://images.dog.ceo/breeds/x/1.jpg","status":"success"}`,
			}}
			sender := &MockReplySender{}
			dog := NewDog(fetcher, sender, dogURL+"/", "corgi")

			cmd := &domain.Command{Name: "dog"}
			if testCase.arg != "" {
				cmd.Args = []string{testCase.arg}
			}

			err := dog.Respond(t.Context(), cmd)
			require.NoError(t, err)

			assert.Equal(t, []string{testCase.wantURL}, fetcher.URLs())
			embed := sender.LastEmbed()
			require.NotNil(t, embed)
			assert.Equal(t, ":dog:", embed.Title)
			assert.Equal(t, "https://images.dog.ceo/breeds/x/1.jpg", embed.Image)
			assert.Empty(t, sender.Errors)
		})
	}
}

func TestDog_Failures(t *testing.T) {
	url := dogURL + "/breed/corgi/images/random"

	type TestCase struct {
		description string
		fetcher     *MockFetcher
		wantErr     error
	}

	testCases := []TestCase{
		{
			description: "upstream 500",
			fetcher:     &MockFetcher{Errs: map[string]error{url: errServer}},
			wantErr:     domain.ErrTransport,
		},
		{
			description: "status not success",
			fetcher:     &MockFetcher{Bodies: map[string]string{url: `{"message":"Breed not found","status":"error"}`}},
			wantErr:     domain.ErrDecode,
		},
		{
			description: "missing message",
			fetcher:     &MockFetcher{Bodies: map[string]string{url: `{"status":"success"}`}},
			wantErr:     domain.ErrFieldMissing,
		},
		{
			description: "malformed body",
			fetcher:     &MockFetcher{Bodies: map[string]string{url: `{"status":`}},
			wantErr:     domain.ErrDecode,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			sender := &MockReplySender{}
			dog := NewDog(testCase.fetcher, sender, dogURL, "corgi")

			err := dog.Respond(t.Context(), &domain.Command{Name: "dog"})
			require.ErrorIs(t, err, testCase.wantErr)

			assert.Len(t, sender.Errors, 1)
			assert.Empty(t, sender.Replies)
		})
	}
}

func TestDog_InvalidBreed(t *testing.T) {
	fetcher := &MockFetcher{}
	sender := &MockReplySender{}
	dog := NewDog(fetcher, sender, dogURL, "corgi")

	err := dog.Respond(t.Context(), &domain.Command{Name: "dog", Args: []string{"../../admin"}})
	require.ErrorIs(t, err, errInvalidBreed)
	assert.Empty(t, fetcher.Requests)
}
