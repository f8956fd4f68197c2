package main

const rootUsage = "execwalk"

const rootHelpShort = "Command Runner & Filesystem Walk Executor"

const rootHelpLong = `execwalk - Command Runner & Filesystem Walk Executor
Run commands once, for every entry of a tree, or as a service

execwalk runs external commands, captures their output and
prints it as blocks: standard output on success, standard
error on failure. A dry run describes without executing.

Quick Start:
  1. Try a command with "execwalk run --dry-run -- <cmd>"
  2. Apply it to a tree with "execwalk walk <dir> -- <cmd> {}"
  3. Collect outcomes with "--report <file>" for later use

See 'execwalk <command> --help' for command-specific information.
Documentation: https://github.com/desertwitch/execwalk`

const checkConfigUsage = "check-config <file>"

const checkConfigHelpShort = "Validates an execwalk YAML configuration file"

const checkConfigHelpLong = `Validates the syntax and values of an execwalk YAML configuration
Use the command to check configurations before deploying

Invalid configurations will prevent execwalk from starting;
this command will exit with non-zero if the validation fails.

Full documentation at: https://github.com/desertwitch/execwalk`

const checkConfigHelpExample = `
Validate an execwalk YAML configuration file:
  execwalk check-config /tmp/execwalk.yaml`

const runUsage = "run [flags] -- <command> [args...]"

const runHelpShort = "Runs a single command and prints its output"

const runHelpLong = `Runs a single command and prints its outcome as a block
A block consists of a header, the output and a separator

The command is given after "--" as separate arguments, or as
a single quoted string which is split on whitespace, where
double-quoted parts are kept together as one argument.

Exits with 1 when the command exits non-zero, and with 3
when the command could not be started at all.

Documentation: https://github.com/desertwitch/execwalk`

const runHelpExample = `
Describe what would be run without running it:
  execwalk run --dry-run --dir /srv/repo -- git status -s

Run a command string with a header and a separator:
  execwalk run --header "== status ==" --separator "---" 'git status -s'`

const walkUsage = "walk [flags] <dir> -- <command> [args...]"

const walkHelpShort = "Runs a command for every entry of a directory tree"

const walkHelpLong = `Walks a directory tree and runs a command for every entry
Entries are processed one after another, in walk order
If <dir> is a file, the command runs once for that file

The command arguments may contain placeholders:
  "{}"     - path of the entry
  "{rel}"  - path of the entry relative to <dir>
  "{name}" - base name of the entry
  "{dir}"  - the entry if a directory, else its parent
Without placeholders, the entry path is appended.

To exclude directories from this operation, put ignore files:
  ".execwalk-ignore" - ignore files in the directory
  ".execwalk-ignore-all" - ignore directory and subdirectories

Exits with 1 when any command exits non-zero, and with 3
when a command could not be started (ending the walk).

Documentation: https://github.com/desertwitch/execwalk`

const walkHelpExample = `
Show the status of every repository below a directory:
  execwalk walk --kind dirs --max-depth 1 --chdir ~/src -- git status -s

Count lines of all Go files, skipping vendored code:
  execwalk walk -x "vendor/**" -x "*_test.go" --kind files . -- wc -l

Write a JSON report of all outcomes:
  execwalk walk --report /tmp/report.json /data -- sha256sum {}`

const serveUsage = "serve [flags] -- <command> [args...]"

const serveHelpShort = "Starts a service and waits for it to accept connections"

const serveHelpLong = `Starts a long-running command and waits until it is ready
Ready means a TCP connection to --host and --port succeeds

If the service is not ready within --timeout, or exits on
its own before, it is killed and execwalk exits with 4.
A port that already accepts connections before the start
is refused with exit code 2, as readiness could not be told.
Once ready, the service runs until it exits or a signal
is received, upon which the service is stopped.

Documentation: https://github.com/desertwitch/execwalk`

const serveHelpExample = `
Start a web server and wait up to 30 seconds for it:
  execwalk serve --port 8080 --timeout 30s -- python3 -m http.server 8080`
