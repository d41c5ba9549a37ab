// Command event-ratings prints conference sessions ranked by audience rating.
package main

import "github.com/pfrederiksen/event-ratings/internal/cli"

func main() {
	cli.Execute()
}
