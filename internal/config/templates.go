package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `[firehose]
url = "wss://bsky.network/xrpc/com.atproto.sync.subscribeRepos"
cursor = 0
handshake_timeout = "10s"
read_timeout = "60s"
batch_interval = "50ms"
max_batch = 512
max_reconnects = 0

[firehose.backoff]
initial_delay = "250ms"
multiplier = 2.0
max_delay = "30s"
jitter = true

[batch]
stop_on_error = false

[log]
level = "info"
timestamp = true
json = false
file = ""

[metrics]
listen = "127.0.0.1:9464"
`
