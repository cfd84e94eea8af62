package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lolplayer/src/player"
)

const confFile = "config.yaml"

type speakerConfig struct {
	SampleRate int           `yaml:"sample_rate"`
	Buffer     time.Duration `yaml:"buffer"`
	// Volume is the gain applied to all tracks as a power of two.
	Volume float64 `yaml:"volume"`
}

type mpdConfig struct {
	Network  string  `yaml:"network"`
	Address  string  `yaml:"address"`
	Password *string `yaml:"password"`
	// MusicDirectory is where the music directory of MPD is found on this
	// host. Only tracks below it can be played.
	MusicDirectory string `yaml:"music_directory"`
}

type config struct {
	Address    string `yaml:"bind"`
	StorageDir string `yaml:"storage_dir"`

	Library         string        `yaml:"library"`
	Extensions      []string      `yaml:"extensions"`
	ReadTags        bool          `yaml:"read_tags"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`

	Speaker *speakerConfig `yaml:"speaker"`
	MPD     *mpdConfig     `yaml:"mpd"`
}

func (conf *config) Validate() (errs []error) {
	if conf.StorageDir == "" {
		errs = append(errs, fmt.Errorf("config: `storage_dir` is required"))
	}
	if conf.MonitorInterval < 0 {
		errs = append(errs, fmt.Errorf("config: `monitor_interval` must not be negative"))
	}
	if conf.Speaker == nil && conf.MPD == nil {
		errs = append(errs, fmt.Errorf("config: no output configured"))
	} else if conf.Speaker != nil && conf.MPD != nil {
		errs = append(errs, fmt.Errorf("config: only one of `speaker` and `mpd` may be configured"))
	}
	if conf.Speaker != nil {
		if conf.Speaker.SampleRate <= 0 {
			errs = append(errs, fmt.Errorf("config: `speaker.sample_rate` must be positive"))
		}
		if conf.Speaker.Buffer <= 0 {
			errs = append(errs, fmt.Errorf("config: `speaker.buffer` must be positive"))
		}
	}
	if conf.MPD != nil {
		if conf.MPD.Address == "" {
			errs = append(errs, fmt.Errorf("config: `mpd.address` is required"))
		}
		if conf.MPD.MusicDirectory == "" {
			errs = append(errs, fmt.Errorf("config: `mpd.music_directory` is required"))
		}
	}
	for _, ext := range conf.Extensions {
		if strings.Trim(ext, ".") == "" {
			errs = append(errs, fmt.Errorf("config: empty extension in `extensions`"))
		}
	}
	return
}

// applyDefaults fills in unset optional values and expands paths.
func (conf *config) applyDefaults() {
	if conf.MonitorInterval == 0 {
		conf.MonitorInterval = player.DefaultAdvanceInterval
	}
	if conf.Speaker != nil {
		if conf.Speaker.SampleRate == 0 {
			conf.Speaker.SampleRate = 44100
		}
		if conf.Speaker.Buffer == 0 {
			conf.Speaker.Buffer = 100 * time.Millisecond
		}
	}
	if conf.MPD != nil {
		if conf.MPD.Network == "" {
			conf.MPD.Network = "tcp"
		}
		conf.MPD.MusicDirectory = expandHome(conf.MPD.MusicDirectory)
	}
	conf.StorageDir = expandHome(conf.StorageDir)
	conf.Library = expandHome(conf.Library)
}

func LoadConfig(filename string) (*config, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	var conf config
	if err := d.Decode(&conf); err != nil {
		return nil, err
	}
	conf.applyDefaults()

	return &conf, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	return strings.Replace(path, "~", os.Getenv("HOME"), 1)
}
