//go:build !board_pico_neo

package boards

var Selected = PicoPWM
