package main

import "time"

// CLI is the root command line.
type CLI struct {
	ConfigFile string     `name:"config" help:"Config file (JSON, YAML or TOML by extension)" env:"GPIO2UINPUT_CONFIG"`
	Log        LogOptions `embed:"" prefix:"log."`

	Run         RunCmd         `cmd:"" default:"withargs" help:"Translate GPIO and expander inputs into virtual input events"`
	ListOptions ListOptionsCmd `cmd:"" name:"list-options" help:"Print the accepted mapping targets and exit"`
	Config      ConfigCommand  `cmd:"" help:"Configuration helpers"`
}

// LogOptions configure the process logger.
type LogOptions struct {
	Level  string `name:"level" help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"GPIO2UINPUT_LOG_LEVEL"`
	File   string `name:"file" help:"Also write logs to this file" env:"GPIO2UINPUT_LOG_FILE"`
	Format string `name:"format" help:"Log format" enum:"auto,text,json" default:"auto" env:"GPIO2UINPUT_LOG_FORMAT"`
}

// RunCmd runs the translation daemon.
type RunCmd struct {
	Chip       string `name:"chip" help:"GPIO chip device" default:"/dev/gpiochip0" env:"GPIO2UINPUT_CHIP"`
	Start      int    `name:"start" help:"First line offset to consider" default:"5" env:"GPIO2UINPUT_START"`
	End        int    `name:"end" help:"Last line offset to consider, clamped to the chip" default:"27" env:"GPIO2UINPUT_END"`
	DebounceUs int    `name:"debounce-us" help:"Debounce window in microseconds" default:"1000" env:"GPIO2UINPUT_DEBOUNCE_US"`
	EventBuf   int    `name:"event-buf" help:"Kernel edge event buffer per line" default:"256" env:"GPIO2UINPUT_EVENT_BUF"`
	Map        string `name:"map" help:"Mapping file, line=TOKEN text or TOML" env:"GPIO2UINPUT_MAP"`
	ActiveHigh bool   `name:"active-high" help:"Rising edge or set bit is a press (default falling edge or cleared bit)" env:"GPIO2UINPUT_ACTIVE_HIGH"`
	Auto       string `name:"auto" help:"Assign unmapped lines automatically" enum:"buttons,keys,none" default:"buttons" env:"GPIO2UINPUT_AUTO"`
	Realtime   bool   `name:"realtime" help:"Request SCHED_FIFO at maximum priority" default:"true" negatable:"" env:"GPIO2UINPUT_REALTIME"`
	Uinput     string `name:"uinput" help:"uinput control device" default:"/dev/uinput" env:"GPIO2UINPUT_UINPUT"`

	Bus  BusOptions  `embed:"" prefix:"i2c."`
	MQTT MQTTOptions `embed:"" prefix:"mqtt."`

	HTTP string `name:"http" help:"HTTP status address, empty to disable" env:"GPIO2UINPUT_HTTP"`
}

// BusOptions configure the I2C input expander.
type BusOptions struct {
	Dev        string `name:"dev" help:"I2C bus device of the input expander, empty to disable" env:"GPIO2UINPUT_I2C_DEV"`
	Addr       string `name:"addr" help:"Expander address (decimal, 0x hex or 0 octal)" default:"0x42" env:"GPIO2UINPUT_I2C_ADDR"`
	IntervalMs int    `name:"interval-ms" help:"Poll interval in milliseconds, minimum 1" default:"5" env:"GPIO2UINPUT_I2C_INTERVAL_MS"`
	Log        bool   `name:"log" help:"Log every raw frame and axis calibration at debug level" env:"GPIO2UINPUT_I2C_LOG"`
	NoAxes     bool   `name:"no-axes" help:"Do not map analog inputs to gamepad axes" env:"GPIO2UINPUT_I2C_NO_AXES"`
}

// MQTTOptions configure the optional diagnostic publisher.
type MQTTOptions struct {
	Broker    string        `name:"broker" help:"MQTT broker address, empty to disable" env:"GPIO2UINPUT_MQTT_BROKER"`
	Heartbeat time.Duration `name:"heartbeat" help:"Heartbeat interval, 0 to disable" default:"15m" env:"GPIO2UINPUT_MQTT_HEARTBEAT"`
}
