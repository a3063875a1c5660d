// Package cli builds the command-line collaborator for a composer: a cobra
// root command with the configuration resolution flags and the run and list
// subcommands. The CLI owns the translation of composition errors into exit
// codes and user-facing messages; the engine itself never exits.
package cli
