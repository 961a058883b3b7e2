package config

// Example is a commented starting config, written by `touch-sensor init`.
const Example = `# touch-sensor configuration

# Poll interval for every button. Must be shorter than the debounce interval.
PollMs = 20
# A press lasting this long emits one HELD event; 0 disables HELD.
HoldMs = 1000
# Heartbeat interval; 0 disables heartbeats.
HeartbeatMs = 900000
Broker = "tcp://127.0.0.1:1883"
# HTTP status address; empty disables the status page.
HTTP = ":8080"

# rc: RC discharge timing on a GPIO line (Line = offset on Chip)
# ads: ADS1115 over periph.io (Channel = ADC channel, Line = pad pin name)
# gobot: ADS1115 over gobot's raspi adaptor (Channel, Line = header pin)
Backend = "rc"
Chip = "gpiochip0"
MaxCount = 1000

[[Button]]
	Name = "T0"
	Line = "17"
	# Raw readings below Threshold count as touched.
	Threshold = 40
	# 0 reports every sample change without debouncing.
	DebounceMs = 50
[[Button]]
	Name = "T1"
	Line = "27"
	Threshold = 40
	DebounceMs = 50
	# Uncomment to report touched as released.
	# Invert = true
`
