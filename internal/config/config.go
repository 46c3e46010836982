// Package config layers defaults, an optional YAML file, MARITIME_*
// environment variables and command line flags into a Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/network"
	"maritime-simulator/internal/routing"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	ScenarioMaritime = "maritime"
	ScenarioMesh     = "mesh"
)

type TrafficConfig struct {
	PacketSize int     `mapstructure:"packet-size" yaml:"packet-size"`
	Interval   float64 `mapstructure:"interval" yaml:"interval"`
	// WiMAX link between ships and the land station
	Range     float64                  `mapstructure:"range" yaml:"range"`
	Bandwidth float64                  `mapstructure:"bandwidth" yaml:"bandwidth"`
	LossProb  float64                  `mapstructure:"loss-prob" yaml:"loss-prob"`
	Delay     network.DelayModelConfig `mapstructure:"delay" yaml:"delay"`
}

type MeshConfig struct {
	XSize   int     `mapstructure:"x-size" yaml:"x-size"`
	YSize   int     `mapstructure:"y-size" yaml:"y-size"`
	Step    float64 `mapstructure:"step" yaml:"step"` // m
	Clients int     `mapstructure:"clients" yaml:"clients"`
	Range   float64 `mapstructure:"range" yaml:"range"` // m
	// client packet intervals are drawn uniformly from this range
	MinInterval float64 `mapstructure:"min-interval" yaml:"min-interval"`
	MaxInterval float64 `mapstructure:"max-interval" yaml:"max-interval"`
}

type Config struct {
	Scenario string           `mapstructure:"scenario" yaml:"scenario"`
	Protocol routing.Protocol `mapstructure:"protocol" yaml:"protocol"`
	Compare  bool             `mapstructure:"compare" yaml:"compare"`
	Duration float64          `mapstructure:"duration" yaml:"duration"`
	// TimeScale turns a sampled inter-arrival into simulated seconds.
	TimeScale float64 `mapstructure:"time-scale" yaml:"time-scale"`
	// ReportScale turns simulated time into reported seconds.
	ReportScale float64 `mapstructure:"report-scale" yaml:"report-scale"`
	OutputDir   string  `mapstructure:"output-dir" yaml:"output-dir"`
	SeedName    string  `mapstructure:"seed-name" yaml:"seed-name"`
	LogLevel    string  `mapstructure:"log-level" yaml:"log-level"`

	Geometry  lane.Geometry          `mapstructure:"geometry" yaml:"geometry"`
	Lanes     map[string]lane.Params `mapstructure:"lanes" yaml:"lanes"`
	TimeGrid  distribution.Grid      `mapstructure:"time-grid" yaml:"time-grid"`
	SpeedGrid distribution.Grid      `mapstructure:"speed-grid" yaml:"speed-grid"`

	Traffic TrafficConfig `mapstructure:"traffic" yaml:"traffic"`
	Mesh    MeshConfig    `mapstructure:"mesh" yaml:"mesh"`
}

func Default() Config {
	return Config{
		Scenario:    ScenarioMaritime,
		Protocol:    routing.AODV,
		Duration:    3600,
		TimeScale:   60,
		ReportScale: 1,
		OutputDir:   "results",
		SeedName:    "maritime",
		LogLevel:    "info",
		Geometry:    lane.DefaultGeometry(),
		Lanes: map[string]lane.Params{
			"east": lane.DefaultParams(lane.East),
			"west": lane.DefaultParams(lane.West),
		},
		TimeGrid:  distribution.Grid{Start: 1, Stop: 60, Step: 1},
		SpeedGrid: distribution.Grid{Start: 0.001, Stop: 0.012, Step: 0.00025},
		Traffic: TrafficConfig{
			PacketSize: 1024,
			Interval:   1,
			Range:      150,
			Bandwidth:  10e6,
			LossProb:   0.01,
			Delay:      network.DefaultDelayModelConfig(),
		},
		Mesh: MeshConfig{
			XSize:       3,
			YSize:       3,
			Step:        50,
			Clients:     1,
			Range:       50,
			MinInterval: 0.01,
			MaxInterval: 1.0,
		},
	}
}

// LaneParams returns the fitted constants configured for l.
func (c Config) LaneParams(l lane.Lane) lane.Params {
	if p, ok := c.Lanes[strings.ToLower(l.String())]; ok {
		return p
	}
	return lane.DefaultParams(l)
}

func (c Config) Validate() error {
	if _, err := routing.FromNumber(int(c.Protocol)); err != nil {
		return err
	}
	if c.Scenario != ScenarioMaritime && c.Scenario != ScenarioMesh {
		return fmt.Errorf("%w: unknown scenario %q", ErrInvalidConfig, c.Scenario)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if !(c.TimeScale > 0) || !(c.ReportScale > 0) {
		return fmt.Errorf("%w: time scales must be positive", ErrInvalidConfig)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name := range c.Lanes {
		if _, err := lane.ParseLane(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if !(c.TimeGrid.Start > 0) || !(c.SpeedGrid.Start > 0) {
		return fmt.Errorf("%w: time grid start %v and speed grid start %v must be positive",
			ErrInvalidConfig, c.TimeGrid.Start, c.SpeedGrid.Start)
	}
	if c.Compare && c.OutputDir == "-" {
		return fmt.Errorf("%w: --compare needs an output directory, not stdout", ErrInvalidConfig)
	}
	if c.Traffic.PacketSize <= 0 || !(c.Traffic.Interval > 0) {
		return fmt.Errorf("%w: traffic needs a positive packet size and interval", ErrInvalidConfig)
	}
	if c.Traffic.LossProb < 0 || c.Traffic.LossProb >= 1 {
		return fmt.Errorf("%w: loss probability %v outside [0,1)", ErrInvalidConfig, c.Traffic.LossProb)
	}
	m := c.Mesh
	if m.XSize < 1 || m.YSize < 1 || m.XSize*m.YSize < 2 || !(m.Step > 0) {
		return fmt.Errorf("%w: mesh grid %dx%d step %v", ErrInvalidConfig, m.XSize, m.YSize, m.Step)
	}
	if m.Clients < 1 || m.Clients > m.XSize*m.YSize-1 {
		return fmt.Errorf("%w: %d clients do not fit a %d node grid", ErrInvalidConfig, m.Clients, m.XSize*m.YSize)
	}
	if !(m.MinInterval > 0) || m.MaxInterval < m.MinInterval {
		return fmt.Errorf("%w: mesh interval range [%v, %v]", ErrInvalidConfig, m.MinInterval, m.MaxInterval)
	}
	return nil
}

// ResultsPath is the CSV the maritime collector writes to.
func (c Config) ResultsPath() string {
	if c.OutputDir == "-" {
		return "-"
	}
	return filepath.Join(c.OutputDir, fmt.Sprintf("results_%s.csv", c.Protocol))
}

// WriteManifest records the effective configuration as YAML.
func (c Config) WriteManifest(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadManifest loads a configuration written by WriteManifest.
func ReadManifest(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// flagKeys maps command line flags to their viper keys.
var flagKeys = map[string]string{
	"scenario":         "scenario",
	"protocol":         "protocol",
	"compare":          "compare",
	"duration":         "duration",
	"time-scale":       "time-scale",
	"report-scale":     "report-scale",
	"output-dir":       "output-dir",
	"seed-name":        "seed-name",
	"log-level":        "log-level",
	"station-distance": "geometry.station-distance",
	"lane-length":      "geometry.lane-length",
	"lane-width":       "geometry.lane-width",
	"min-separation":   "geometry.min-separation",
	"route-length":     "geometry.route-length",
	"packet-size":      "traffic.packet-size",
	"packet-interval":  "traffic.interval",
	"range":            "traffic.range",
	"x-size":           "mesh.x-size",
	"y-size":           "mesh.y-size",
	"step":             "mesh.step",
	"clients":          "mesh.clients",
}

// RegisterFlags defines the command line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "YAML configuration file")
	fs.String("scenario", d.Scenario, "maritime or mesh")
	fs.String("protocol", "1", "Routing protocol: 1=AODV;2=OLSR (names accepted)")
	fs.Bool("compare", d.Compare, "Run every routing protocol and write a comparison")
	fs.Float64("duration", d.Duration, "Simulated time (s)")
	fs.Float64("time-scale", d.TimeScale, "Simulated seconds per sampled inter-arrival unit")
	fs.Float64("report-scale", d.ReportScale, "Reported seconds per simulated second")
	fs.String("output-dir", d.OutputDir, "Directory for results; - writes CSV to stdout")
	fs.String("seed-name", d.SeedName, "Prefix of the random stream names")
	fs.String("log-level", d.LogLevel, "trace, debug, info, warn or error")
	fs.Float64("station-distance", d.Geometry.StationDistance, "Distance from the land station to the nearest lane (km)")
	fs.Float64("lane-length", d.Geometry.LaneLength, "Lateral span ships are placed in (km)")
	fs.Float64("lane-width", d.Geometry.LaneWidth, "Lane width (km)")
	fs.Float64("min-separation", d.Geometry.MinSeparation, "Minimum lateral separation between consecutive ships (km)")
	fs.Float64("route-length", d.Geometry.RouteLength, "Length of the traffic area along the lanes (km)")
	fs.Int("packet-size", d.Traffic.PacketSize, "Size of packets sent by ships (bytes)")
	fs.Float64("packet-interval", d.Traffic.Interval, "Interval between packets of a ship (s)")
	fs.Float64("range", d.Traffic.Range, "WiMAX link range (km)")
	fs.Int("x-size", d.Mesh.XSize, "Number of nodes in a row grid")
	fs.Int("y-size", d.Mesh.YSize, "Number of rows in a grid")
	fs.Float64("step", d.Mesh.Step, "Size of edge in the grid (meters)")
	fs.Int("clients", d.Mesh.Clients, "Number of client nodes")
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("scenario", d.Scenario)
	v.SetDefault("protocol", d.Protocol.String())
	v.SetDefault("compare", d.Compare)
	v.SetDefault("duration", d.Duration)
	v.SetDefault("time-scale", d.TimeScale)
	v.SetDefault("report-scale", d.ReportScale)
	v.SetDefault("output-dir", d.OutputDir)
	v.SetDefault("seed-name", d.SeedName)
	v.SetDefault("log-level", d.LogLevel)

	v.SetDefault("geometry", structToMap(d.Geometry))
	v.SetDefault("time-grid", structToMap(d.TimeGrid))
	v.SetDefault("speed-grid", structToMap(d.SpeedGrid))
	v.SetDefault("traffic", structToMap(d.Traffic))
	v.SetDefault("mesh", structToMap(d.Mesh))
	lanes := make(map[string]any, len(d.Lanes))
	for name, p := range d.Lanes {
		lanes[name] = structToMap(p)
	}
	v.SetDefault("lanes", lanes)
}

// structToMap flattens a config section to the map form viper merges.
func structToMap(in any) map[string]any {
	out := make(map[string]any)
	if err := mapstructure.Decode(in, &out); err != nil {
		panic(err)
	}
	for k, val := range out {
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Struct {
			out[k] = structToMap(val)
		}
	}
	return out
}

// Load parses args into fs and resolves the layered configuration.
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	if fs.Lookup("protocol") == nil {
		RegisterFlags(fs)
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("MARITIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, err
			}
		}
	}

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	// the selector is checked first so an unknown protocol surfaces as such
	if _, err := routing.ParseProtocol(v.GetString("protocol")); err != nil {
		return Config{}, err
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       protocolHook,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var protocolType = reflect.TypeOf(routing.Protocol(0))

func protocolHook(from, to reflect.Type, data any) (any, error) {
	if to != protocolType || from == protocolType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return routing.ParseProtocol(data.(string))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return routing.FromNumber(int(reflect.ValueOf(data).Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return routing.FromNumber(int(reflect.ValueOf(data).Uint()))
	case reflect.Float32, reflect.Float64:
		return routing.FromNumber(int(reflect.ValueOf(data).Float()))
	}
	return data, nil
}
