package main

import "audio-from-video/cmd"

func main() {
	cmd.Execute()
}
