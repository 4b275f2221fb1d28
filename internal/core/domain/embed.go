package domain

import "fmt"

type Field struct {
	Name   string
	Value  string
	Inline bool
	// Column is set when Value was rendered from a Column of Rows entries.
	Column bool
	Rows   int
}

type Embed struct {
	Title       string
	Description string
	Color       Color
	Thumbnail   string
	Image       string
	Fields      []Field
	Footer      string
}

// Columns returns the column fields in order.
func (e *Embed) Columns() []Field {
	var cols []Field
	for _, f := range e.Fields {
		if f.Column {
			cols = append(cols, f)
		}
	}
	return cols
}

// EmbedBuilder assembles an Embed. Column fields must all share the same row count.
type EmbedBuilder struct {
	embed Embed
	rows  int
	err   error
}

func NewEmbed(title string) *EmbedBuilder {
	return &EmbedBuilder{embed: Embed{Title: title, Color: ColorDarkPurple}, rows: -1}
}

func (b *EmbedBuilder) SetColor(c Color) *EmbedBuilder {
	b.embed.Color = c
	return b
}

func (b *EmbedBuilder) SetDescription(d string) *EmbedBuilder {
	b.embed.Description = d
	return b
}

func (b *EmbedBuilder) SetThumbnail(url string) *EmbedBuilder {
	b.embed.Thumbnail = url
	return b
}

func (b *EmbedBuilder) SetImage(url string) *EmbedBuilder {
	b.embed.Image = url
	return b
}

func (b *EmbedBuilder) SetFooter(text string) *EmbedBuilder {
	b.embed.Footer = text
	return b
}

// AddField appends a free-form field.
func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	b.embed.Fields = append(b.embed.Fields, Field{Name: name, Value: value, Inline: inline})
	return b
}

// AddColumn appends a rendered column. The first column fixes the row count for the embed.
func (b *EmbedBuilder) AddColumn(name string, col Column, inline bool) *EmbedBuilder {
	if b.err != nil {
		return b
	}

	if b.rows >= 0 && len(col) != b.rows {
		b.err = fmt.Errorf("%w: %q has %d rows, want %d", ErrColumnMismatch, name, len(col), b.rows)
		return b
	}
	b.rows = len(col)

	b.embed.Fields = append(b.embed.Fields, Field{
		Name:   name,
		Value:  col.Render(),
		Inline: inline,
		Column: true,
		Rows:   len(col),
	})
	return b
}

func (b *EmbedBuilder) Build() (Embed, error) {
	if b.err != nil {
		return Embed{}, b.err
	}
	return b.embed, nil
}
