package main

import (
	"context"
	"runtime"
	"time"

	"ledstrip-go/bus"
	"ledstrip-go/platform"
	"ledstrip-go/services/config"
	"ledstrip-go/services/console"
	"ledstrip-go/services/heartbeat"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
	"ledstrip-go/x/timex"
)

func main() {
	board, err := platform.Setup()
	if err != nil {
		halt("[main] board setup failed: " + err.Error())
	}
	time.Sleep(timex.Ms(board.Plan.BootDelayMs))
	println("[main] boot", board.Plan.Name)

	ctx := context.Background()
	b := bus.NewBus(8)

	st := strip.New(board.Output, nil)
	if err := st.Start(ctx, b.NewConnection("strip")); err != nil {
		halt("[main] strip start failed: " + err.Error())
	}
	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))
	console.Start(ctx, b.NewConnection("console"))

	config.NewConfigService().Start(config.WithDevice(ctx, board.Plan.DeviceID()), b.NewConnection("config"))

	ui := b.NewConnection("main")
	next := func() {
		ui.Publish(ui.NewMessage(strip.TopicControl(strip.VerbCommand), types.StripCommand{Name: "next"}, false))
	}
	if err := board.Start(ctx, platform.Inputs{Latch: st.Latch(), Press: next}); err != nil {
		println("[main] board inputs:", err.Error())
	}

	for {
		time.Sleep(30 * time.Second)
		printMem()
	}
}

func halt(msg string) {
	for {
		println(msg)
		time.Sleep(5 * time.Second)
	}
}

// printMem prints a compact snapshot of runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
