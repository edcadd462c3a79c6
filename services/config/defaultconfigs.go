package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "strip": {
      "static_ms": 100,
      "fade_ms": 40,
      "rainbow_ms": 60
  },
  "console": {
      "transport": {
          "type": "uart",
          "uart": {"baud": 115200, "rx_pin": 1, "tx_pin": 0}
      }
  },
  "heartbeat": {
      "interval": 5
  }
}`

const cfgHost = `{
  "strip": {
      "static_ms": 100,
      "fade_ms": 40,
      "rainbow_ms": 60
  },
  "console": {
      "transport": {"type": "stdio"}
  },
  "heartbeat": {
      "interval": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"host": []byte(cfgHost),
}
