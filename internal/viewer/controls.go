package viewer

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"postfx/internal/logger"
	"postfx/pkg/postfx"
)

// requests are viewer-level actions raised by one frame of input
type requests struct {
	quit        bool
	togglePause bool
	regenerate  bool
	zoom        float64
}

// handleControls applies pipeline edits to composer and returns the rest.
// Keys 1-9 toggle the pass at that position, O cycles every SSAO pass's
// output mode.
func handleControls(in *InputHandler, composer *postfx.Composer, log *logger.Logger) requests {
	req := requests{
		quit:        in.IsKeyPressed(glfw.KeyEscape),
		togglePause: in.IsKeyPressed(glfw.KeySpace),
		regenerate:  in.IsKeyPressed(glfw.KeyR),
		zoom:        in.WheelDelta(),
	}

	passes := composer.Passes()
	for i := 0; i < 9 && i < len(passes); i++ {
		if !in.IsKeyPressed(glfw.Key1 + glfw.Key(i)) {
			continue
		}
		switch passes[i].(type) {
		case *postfx.MaskPass, *postfx.ClearMaskPass:
			log.Warnf("pass %d (%s) is part of a mask pair and cannot be toggled", i+1, passes[i].Name())
			continue
		}
		flags := passes[i].Flags()
		flags.Enabled = !flags.Enabled
		log.Infof("pass %d (%s) enabled=%t", i+1, passes[i].Name(), flags.Enabled)
	}

	if in.IsKeyPressed(glfw.KeyO) {
		for _, p := range passes {
			if ssao, ok := p.(*postfx.SSAOPass); ok {
				ssao.Output = ssao.Output.Next()
				log.Infof("ssao output: %s", ssao.Output)
			}
		}
	}
	return req
}
