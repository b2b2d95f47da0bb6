package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jessevdk/go-flags"
)

var (
	// ErrHelp is returned by ParseArgs after it printed the help text
	ErrHelp = errors.New("help requested")

	// ErrUsage marks malformed command line arguments
	ErrUsage = errors.New("bad arguments")
)

type options struct {
	TLD               string        `short:"d" long:"tld" description:"TLD to check (cz, sk, com, net, org)"`
	Suffix            string        `short:"s" long:"suffix" description:"Suffix for the output file name when output_file is omitted"`
	MinLength         int           `long:"min" description:"Minimum number of characters in a domain"`
	MaxLength         int           `long:"max" description:"Maximum number of characters in a domain"`
	Skip              int           `long:"skip" description:"Number of leading input lines to skip"`
	Resume            bool          `long:"resume" description:"Continue from the last saved position"`
	Debug             bool          `long:"debug" description:"Verbose logging including raw WHOIS responses"`
	LogFile           string        `long:"log-file" description:"Persistent log file (empty disables)"`
	Backoff           time.Duration `long:"backoff" description:"Delay before each query, doubled on throttling"`
	GiveUp            time.Duration `long:"give-up" description:"Give up on a domain once the delay reaches this"`
	MinResponseLength int           `long:"min-response" description:"Shortest WHOIS response accepted with an error status"`
	Timeout           time.Duration `long:"timeout" description:"Upper bound for a single WHOIS call"`
	Transport         string        `long:"transport" description:"WHOIS transport (client, command)"`
	WhoisCommand      string        `long:"whois-command" description:"whois binary used by the command transport"`
	WhoisServer       string        `long:"whois-server" description:"Override the registry WHOIS server"`
	DNSPrecheck       bool          `long:"dns-precheck" description:"Treat domains with an SOA record as registered without asking WHOIS"`
	Nameserver        string        `long:"nameserver" description:"DNS server (host:port) for the pre-check"`
	MetricsAddr       string        `long:"metrics-addr" description:"Serve Prometheus metrics on this address"`

	Args struct {
		Input  string `positional-arg-name:"input_file" required:"yes"`
		Output string `positional-arg-name:"output_file"`
	} `positional-args:"yes"`
}

func newParser(opts *options) *flags.Parser {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "free-domains"
	parser.Usage = "[OPTIONS] input_file [output_file]"
	parser.ShortDescription = "Find unregistered domains for a list of keywords"
	return parser
}

// ParseArgs applies command line arguments on top of the current settings.
// Help is written to stdout and reported as ErrHelp.
func (c *Config) ParseArgs(args []string, stdout io.Writer) error {
	opts := c.options()
	parser := newParser(opts)

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return ErrHelp
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, rest)
	}

	c.apply(opts)
	return nil
}

// Usage writes the help text
func (c *Config) Usage(w io.Writer) {
	newParser(c.options()).WriteHelp(w)
}

func (c *Config) options() *options {
	opts := &options{
		TLD:               c.TLD,
		Suffix:            c.Suffix,
		MinLength:         c.MinLength,
		MaxLength:         c.MaxLength,
		Skip:              c.Skip,
		Resume:            c.Resume,
		Debug:             c.Debug,
		LogFile:           c.LogFile,
		Backoff:           c.Backoff,
		GiveUp:            c.GiveUp,
		MinResponseLength: c.MinResponseLength,
		Timeout:           c.Timeout,
		Transport:         c.Transport,
		WhoisCommand:      c.WhoisCommand,
		WhoisServer:       c.WhoisServer,
		DNSPrecheck:       c.DNSPrecheck,
		Nameserver:        c.Nameserver,
		MetricsAddr:       c.MetricsAddr,
	}
	opts.Args.Input = c.InputFile
	opts.Args.Output = c.OutputFile
	return opts
}

func (c *Config) apply(opts *options) {
	c.TLD = opts.TLD
	c.Suffix = opts.Suffix
	c.MinLength = opts.MinLength
	c.MaxLength = opts.MaxLength
	c.Skip = opts.Skip
	c.Resume = opts.Resume
	c.Debug = opts.Debug
	c.LogFile = opts.LogFile
	c.Backoff = opts.Backoff
	c.GiveUp = opts.GiveUp
	c.MinResponseLength = opts.MinResponseLength
	c.Timeout = opts.Timeout
	c.Transport = opts.Transport
	c.WhoisCommand = opts.WhoisCommand
	c.WhoisServer = opts.WhoisServer
	c.DNSPrecheck = opts.DNSPrecheck
	c.Nameserver = opts.Nameserver
	c.MetricsAddr = opts.MetricsAddr
	c.InputFile = opts.Args.Input
	c.OutputFile = opts.Args.Output
}
