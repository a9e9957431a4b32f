// Package config loads the probe's file/env-backed settings (the ambient
// configuration layer): defaults are seeded with creasty/defaults,
// overridden by an optional YAML file and then by PROBING_*-prefixed
// environment variables — env > file > defaults, the same priority order
// the teacher's config package documents. This is distinct from
// configstore (C3), the in-process key/value registry the query engine
// reads and writes at runtime; config is read once at load time to seed
// bootstrapenv's derivation and the logger.
package config

import (
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Settings are the file/env-backed knobs read once at load time.
type Settings struct {
	LogLevel    string `json:"loglevel" mapstructure:"loglevel" yaml:"loglevel" default:"info"`
	Port        string `json:"port" mapstructure:"port" yaml:"port" default:"RANDOM"`
	AddrPattern string `json:"server_addrpattern" mapstructure:"server_addrpattern" yaml:"server_addrpattern" default:".*"`
	AssetsRoot  string `json:"assets_root" mapstructure:"assets_root" yaml:"assets_root" default:""`
}

var (
	mu         sync.RWMutex
	app        = new(Settings)
	cv         *viper.Viper
	configFile string
	configName = "probing"
	configType = "yaml"

	inited            bool
	registeredConfigs = make(map[string]any)
	registeredTypes   = make(map[string]reflect.Type)
)

// SetConfigFile overrides the config file path. Call before Init.
func SetConfigFile(file string) {
	mu.Lock()
	defer mu.Unlock()
	configFile = file
}

// Init loads Settings from defaults, an optional YAML file, then
// PROBING_*-prefixed environment variables (highest priority).
func Init() (*Settings, error) {
	mu.Lock()
	defer mu.Unlock()

	cv = viper.New()
	cv.SetEnvPrefix("PROBING")
	cv.AutomaticEnv()
	cv.AllowEmptyEnv(true)
	cv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	st := reflect.TypeOf(Settings{})
	for i := 0; i < st.NumField(); i++ {
		if tag := st.Field(i).Tag.Get("mapstructure"); tag != "" {
			if err := cv.BindEnv(tag); err != nil {
				return nil, errors.Wrapf(err, "bind env for %s", tag)
			}
		}
	}

	settings := new(Settings)
	if err := defaults.Set(settings); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}

	if configFile != "" {
		cv.SetConfigFile(configFile)
	} else {
		cv.SetConfigName(configName)
		cv.SetConfigType(configType)
		cv.AddConfigPath(".")
		cv.AddConfigPath("/etc/probing/")
	}

	if err := cv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, "read config file")
		}
	}
	if err := cv.Unmarshal(settings); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	app = settings
	for name, typ := range registeredTypes {
		registerType(name, typ)
	}
	inited = true
	return settings, nil
}

// Get returns the currently loaded settings, or a zero-value Settings (the
// struct-tag defaults not applied) if Init has not been called.
func Get() *Settings {
	mu.RLock()
	defer mu.RUnlock()
	return app
}

// Save writes the current settings to out as YAML.
func Save(out io.Writer) error {
	mu.RLock()
	defer mu.RUnlock()
	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(app)
}

// LoadFile reads and unmarshals a standalone YAML file into Settings,
// without touching viper/env state.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	settings := new(Settings)
	if err := defaults.Set(settings); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrap(err, "unmarshal yaml config")
	}
	return settings, nil
}

// Register records a custom configuration section, keyed by its lowercased
// type name, so an extension can declare its own settings block without
// this package knowing about it in advance — grounded on the teacher's
// generic Register[T]/Get[T] mechanism, trimmed of the INI codec. Env
// overrides for time.Duration fields are parsed with time.ParseDuration.
func Register[T any]() {
	mu.Lock()
	defer mu.Unlock()

	var t T
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	name := strings.ToLower(typ.Name())
	if inited {
		registerType(name, typ)
	} else {
		registeredTypes[name] = typ
	}
}

func registerType(name string, typ reflect.Type) {
	name = strings.ToLower(name)

	cfg := reflect.New(typ).Interface()
	if err := defaults.Set(cfg); err != nil {
		zap.S().Named("config").Warnw("failed to set default value", "name", name, "error", err)
	}
	if cv != nil {
		if err := cv.UnmarshalKey(name, cfg); err != nil {
			zap.S().Named("config").Warnw("failed to unmarshal config section", "name", name, "error", err)
		}
	}

	envPrefix := "PROBING_" + strings.ToUpper(name) + "_"
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		envVal, ok := os.LookupEnv(envPrefix + strings.ToUpper(tag))
		if !ok {
			continue
		}
		fieldVal := v.Field(i)
		switch fieldVal.Kind() {
		case reflect.String:
			fieldVal.SetString(envVal)
		case reflect.Bool:
			if b, err := strconv.ParseBool(envVal); err == nil {
				fieldVal.SetBool(b)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.Type == reflect.TypeFor[time.Duration]() {
				if d, err := time.ParseDuration(envVal); err == nil {
					fieldVal.SetInt(int64(d))
				}
			} else if n, err := strconv.ParseInt(envVal, 10, 64); err == nil {
				fieldVal.SetInt(n)
			}
		case reflect.Float32, reflect.Float64:
			if f, err := strconv.ParseFloat(envVal, 64); err == nil {
				fieldVal.SetFloat(f)
			}
		}
	}

	registeredConfigs[name] = cfg
}

// GetSection returns a previously Register'd custom configuration section
// by type, or the zero value if T was never registered.
func GetSection[T any]() (t T) {
	mu.RLock()
	defer mu.RUnlock()

	typ := reflect.TypeOf(t)
	ptr := typ != nil && typ.Kind() == reflect.Pointer
	if ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return t
	}
	name := strings.ToLower(typ.Name())

	cfg, ok := registeredConfigs[name]
	if !ok {
		return t
	}
	val := reflect.ValueOf(cfg)
	if ptr {
		return val.Interface().(T) //nolint:errcheck
	}
	return val.Elem().Interface().(T) //nolint:errcheck
}
