package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jonwraymond/toolforge/toolchain"
	"github.com/spf13/cast"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Defaults applied to unset values.
const (
	DefaultAddr       = ":8080"
	DefaultRateLimit  = 120
	DefaultRateWindow = time.Minute
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the resolved daemon configuration.
type Config struct {
	Server     Server
	Limits     Limits
	Tools      Tools
	Toolchains []toolchain.Spec
}

// Server configures the HTTP surface.
type Server struct {
	Addr           string
	RateLimit      int
	RateWindow     time.Duration
	AllowedOrigins []string
}

// Limits bounds compilation and execution. Zero means the component default.
type Limits struct {
	CompileTimeout time.Duration
	RunTimeout     time.Duration
	ToolTimeout    time.Duration
	BuildTimeout   time.Duration
}

// Tools names the external programs. Empty means the component default.
type Tools struct {
	Bison       string
	Flex        string
	CCompiler   string
	CXXCompiler string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           DefaultAddr,
			RateLimit:      DefaultRateLimit,
			RateWindow:     DefaultRateWindow,
			AllowedOrigins: []string{"*"},
		},
	}
}

// hclFile mirrors the file layout for gohcl.
type hclFile struct {
	Server     *hclServer     `hcl:"server,block"`
	Limits     *hclLimits     `hcl:"limits,block"`
	Tools      *hclTools      `hcl:"tools,block"`
	Toolchains []hclToolchain `hcl:"toolchain,block"`
}

type hclServer struct {
	Addr           string   `hcl:"addr,optional"`
	RateLimit      int      `hcl:"rate_limit,optional"`
	RateWindow     string   `hcl:"rate_window,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

type hclLimits struct {
	CompileTimeout string `hcl:"compile_timeout,optional"`
	RunTimeout     string `hcl:"run_timeout,optional"`
	ToolTimeout    string `hcl:"tool_timeout,optional"`
	BuildTimeout   string `hcl:"build_timeout,optional"`
}

type hclTools struct {
	Bison       string `hcl:"bison,optional"`
	Flex        string `hcl:"flex,optional"`
	CCompiler   string `hcl:"c_compiler,optional"`
	CXXCompiler string `hcl:"cxx_compiler,optional"`
}

type hclToolchain struct {
	Name      string   `hcl:"name,label"`
	Dir       string   `hcl:"dir,optional"`
	Lexer     string   `hcl:"lexer,optional"`
	Grammar   string   `hcl:"grammar,optional"`
	Sources   []string `hcl:"sources,optional"`
	OutputDir string   `hcl:"output_dir,optional"`
	Compiler  string   `hcl:"compiler,optional"`
	Flags     []string `hcl:"flags,optional"`
}

// Load reads and resolves the HCL file at path.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	return Parse(src, abs, filepath.Dir(abs))
}

// Parse decodes HCL source. dir is exposed to expressions as config_dir and
// anchors relative toolchain directories.
func Parse(src []byte, filename, dir string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("config: parse %s: %w", filename, diags)
	}

	var raw hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext(dir), &raw)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("config: decode %s: %w", filename, diags)
	}
	return raw.resolve(dir)
}

func evalContext(dir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(dir),
		},
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// envFunc returns an environment variable, or "" when unset.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "name", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func (f hclFile) resolve(dir string) (Config, error) {
	cfg := Default()

	if s := f.Server; s != nil {
		if s.Addr != "" {
			cfg.Server.Addr = s.Addr
		}
		if s.RateLimit < 0 {
			return Config{}, fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalid)
		}
		if s.RateLimit > 0 {
			cfg.Server.RateLimit = s.RateLimit
		}
		if s.RateWindow != "" {
			d, err := duration("server.rate_window", s.RateWindow)
			if err != nil {
				return Config{}, err
			}
			cfg.Server.RateWindow = d
		}
		if s.AllowedOrigins != nil {
			cfg.Server.AllowedOrigins = s.AllowedOrigins
		}
	}

	if l := f.Limits; l != nil {
		fields := []struct {
			name string
			raw  string
			dst  *time.Duration
		}{
			{"limits.compile_timeout", l.CompileTimeout, &cfg.Limits.CompileTimeout},
			{"limits.run_timeout", l.RunTimeout, &cfg.Limits.RunTimeout},
			{"limits.tool_timeout", l.ToolTimeout, &cfg.Limits.ToolTimeout},
			{"limits.build_timeout", l.BuildTimeout, &cfg.Limits.BuildTimeout},
		}
		for _, fld := range fields {
			if fld.raw == "" {
				continue
			}
			d, err := duration(fld.name, fld.raw)
			if err != nil {
				return Config{}, err
			}
			*fld.dst = d
		}
	}

	if t := f.Tools; t != nil {
		cfg.Tools = Tools{
			Bison:       t.Bison,
			Flex:        t.Flex,
			CCompiler:   t.CCompiler,
			CXXCompiler: t.CXXCompiler,
		}
	}

	seen := make(map[string]bool, len(f.Toolchains))
	for _, tc := range f.Toolchains {
		if seen[tc.Name] {
			return Config{}, fmt.Errorf("%w: duplicate toolchain %q", ErrInvalid, tc.Name)
		}
		seen[tc.Name] = true
		if tc.Lexer == "" && tc.Grammar == "" && len(tc.Sources) == 0 {
			return Config{}, fmt.Errorf("%w: toolchain %q has no lexer, grammar, or sources", ErrInvalid, tc.Name)
		}

		tcDir := tc.Dir
		switch {
		case tcDir == "":
			tcDir = dir
		case !filepath.IsAbs(tcDir):
			tcDir = filepath.Join(dir, tcDir)
		}
		cfg.Toolchains = append(cfg.Toolchains, toolchain.Spec{
			Name:      tc.Name,
			Dir:       tcDir,
			Lexer:     tc.Lexer,
			Grammar:   tc.Grammar,
			Sources:   tc.Sources,
			OutputDir: tc.OutputDir,
			Compiler:  tc.Compiler,
			Flags:     tc.Flags,
		})
	}
	return cfg, nil
}

func duration(field, raw string) (time.Duration, error) {
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalid, field)
	}
	return d, nil
}
