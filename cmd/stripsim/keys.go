package main

import (
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// keymap mirrors the physical remote's layout on the keyboard.
var keymap = map[rune]string{
	'p': "power",
	'n': "next",
	'b': "prev",
	'r': "reset",
	'+': "bright+",
	'-': "bright-",
	'q': "red+",
	'a': "red-",
	'w': "green+",
	's': "green-",
	'e': "blue+",
	'd': "blue-",
	'1': "rainbow",
	'2': "fade",
	'3': "static",
}

const help = "p power  n/b next/prev  r reset  +/- bright  q/a w/s e/d rgb  1/2/3 mode  esc quit"

// describe renders a triple as hex plus hue, saturation and value.
func describe(r, g, b uint8) string {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	return c.Hex() +
		" h=" + strconv.Itoa(int(h+0.5)) +
		" s=" + strconv.FormatFloat(s, 'f', 2, 64) +
		" v=" + strconv.FormatFloat(v, 'f', 2, 64)
}
