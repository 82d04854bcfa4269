// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import (
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/t1c"
)

// recomputeTau implements spec 4.6.4: whenever ambient temp, reflected
// temp, distance or gain could have changed, recompute the four TPD
// parameters. Only a change in ta or distance triggers a fresh τ
// estimate; the other three parameters are still offered to
// EnqueueParam, which elides the write if the encoded value is
// unchanged from the group's cache.
func (p *Pipeline) recomputeTau(env EnvSnapshot, out output.Snapshot) {
	taC := float64(out.AtmosphericTempC)
	if out.UseAutoAmbient && env.AmbientValid {
		taC = env.AmbientTempC
	}

	tuC := taC
	if !out.ReflEqualsAmbient {
		tuC = float64(out.ReflectedTempC)
	}

	distM := float64(out.DistanceCM) / 100
	if out.UseAutoAmbient && env.DistanceValid {
		distM = env.DistanceCM / 100
	}

	changed := !p.tauReady || taC != p.lastTaC || distM != p.lastDistM
	p.lastTaC, p.lastDistM = taC, distM
	p.tauReady = true

	if changed {
		v := p.estimator.Estimate(taC, distM, 0)
		p.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDTau, uint16(v))
	}

	p.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDAtmosphericTemp, encodeTempParam(taC))
	p.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDReflectedTemp, encodeTempParam(tuC))
	p.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDDistance, uint16(distM*100))
}
