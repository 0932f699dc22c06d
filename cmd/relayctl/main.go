// relayctl exercises the upload relay from the command line: it drives the
// same client state machine the admin panel embeds, over either transport.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
