package command

import (
	"fmt"
	"sort"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type route struct {
	name      string
	subOption string
}

type Registry struct {
	commands map[route]port.Command
	aliases  map[string]string
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[route]port.Command)
		r.aliases = make(map[string]string)
	}

	info := handler.Describe()
	key := route{name: strings.ToLower(info.Name), subOption: strings.ToLower(info.SubOption)}

	log.Info().Str("handler", info.Name).Str("option", info.SubOption).Msg("adding command handler to registry")
	r.commands[key] = handler

	for _, alias := range info.Aliases {
		r.aliases[strings.ToLower(alias)] = key.name
	}
}

func (r *Registry) Get(name, subOption string) (port.Command, error) {
	log.Debug().Str("command", name).Str("option", subOption).Msg("fetching command handler from registry")

	name = r.Resolve(name)
	subOption = strings.ToLower(subOption)

	if handler, ok := r.commands[route{name: name, subOption: subOption}]; ok {
		return handler, nil
	}

	if len(r.SubOptions(name)) > 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrUnknownOption, name, subOption)
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name)
}

func (r *Registry) Resolve(name string) string {
	name = strings.ToLower(name)
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

func (r *Registry) SubOptions(name string) []string {
	name = r.Resolve(name)

	var options []string
	for key := range r.commands {
		if key.name == name && key.subOption != "" {
			options = append(options, key.subOption)
		}
	}
	sort.Strings(options)

	return options
}

func (r *Registry) ListCommands() []domain.CommandInfo {
	infos := make([]domain.CommandInfo, 0, len(r.commands))
	for _, handler := range r.commands {
		infos = append(infos, handler.Describe())
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].SubOption < infos[j].SubOption
	})

	return infos
}

// Parse turns a text message such as "/f1 driver", "/f1@somebot driver" or "tb!corgi" into a
// command. The first argument becomes the sub-option when the command has sub-options. ok is
// false when text does not start with one of the prefixes.
func Parse(text string, registry port.CommandRegistry, prefixes ...string) (cmd *domain.Command, ok bool) {
	text = strings.TrimSpace(text)

	var body string
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(strings.ToLower(text), strings.ToLower(prefix)) {
			body = text[len(prefix):]
			ok = true
			break
		}
	}
	if !ok {
		return nil, false
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, false
	}

	name, _, _ := strings.Cut(fields[0], "@")
	cmd = &domain.Command{Name: registry.Resolve(name)}
	args := fields[1:]

	if len(args) > 0 && len(registry.SubOptions(cmd.Name)) > 0 {
		cmd.SubOption = strings.ToLower(args[0])
		args = args[1:]
	}

	if len(args) > 0 {
		cmd.Args = []string{strings.Join(args, " ")}
	}

	return cmd, true
}
