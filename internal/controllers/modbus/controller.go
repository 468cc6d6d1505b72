package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	mbserver "github.com/tbrandon/mbserver"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/coolsim/internal/planner"
	"github.com/Agrid-Dev/coolsim/internal/ports"
	"github.com/Agrid-Dev/coolsim/internal/simulator"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// Holding registers (read/write).
const (
	RegSurface    = 0 // m² ×10
	RegHeight     = 1 // m ×100
	RegSetpoint   = 2 // °C ×100
	RegInsulation = 3 // thermal.Insulation code
	RegUnitType   = 4 // thermal.UnitType code

	holdingCount = 5
)

// Input registers (read only).
const (
	RegBaselineKWh    = 0 // ×100
	RegOptimizedKWh   = 1 // ×100
	RegSavingsPercent = 2 // ×100
	RegPlanAdopted    = 3 // 0 or 1

	summaryCount = 4

	RegExteriorBase          = 100
	RegBaselineInteriorBase  = 200
	RegOptimizedInteriorBase = 300
	hourBlock                = 100
)

const (
	TemperatureScale = 100
	SurfaceScale     = 10
)

type Config struct {
	DeviceID string
	Addr     string
	UnitID   byte // Modbus unit ID, 1..247.
}

type Controller struct {
	svc ports.PlannerService
	cfg Config
	log *zap.Logger

	serv *mbserver.Server
}

func New(svc ports.PlannerService, cfg Config, log *zap.Logger) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{svc: svc, cfg: cfg, log: log.With(zap.String("component", "modbus"))}, nil
}

// Run serves the register map straight from the planner. It blocks until
// ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Handlers must be registered before ListenTCP starts serving.
	serv.RegisterFunctionHandler(3, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		return readRegisters(frame, c.holding(c.svc.Get()))
	})
	serv.RegisterFunctionHandler(4, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		return readRegisters(frame, input(c.svc.Get()))
	})

	// Write Single Register
	serv.RegisterFunctionHandler(6, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		data := frame.GetData()
		if len(data) < 4 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		addr := binary.BigEndian.Uint16(data[0:2])
		value := binary.BigEndian.Uint16(data[2:4])

		if ex := c.write(int(addr), []uint16{value}); ex != &mbserver.Success {
			return []byte{}, ex
		}
		resp := make([]byte, 4)
		copy(resp, data[0:4])
		return resp, &mbserver.Success
	})

	// Write Multiple Registers
	serv.RegisterFunctionHandler(16, func(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		d := frame.GetData()
		if len(d) < 5 {
			return []byte{}, &mbserver.IllegalDataValue
		}
		start := binary.BigEndian.Uint16(d[0:2])
		quantity := binary.BigEndian.Uint16(d[2:4])
		byteCount := int(d[4])
		if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
			return []byte{}, &mbserver.IllegalDataValue
		}
		values := make([]uint16, quantity)
		for i := range values {
			values[i] = binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		}
		if ex := c.write(int(start), values); ex != &mbserver.Success {
			return []byte{}, ex
		}

		resp := make([]byte, 4)
		binary.BigEndian.PutUint16(resp[0:2], start)
		binary.BigEndian.PutUint16(resp[2:4], quantity)
		return resp, &mbserver.Success
	})

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info("listening", zap.String("addr", c.cfg.Addr))

	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

// write applies a block of holding registers as one scenario change: either
// every register is accepted or none is.
func (c *Controller) write(start int, values []uint16) *mbserver.Exception {
	if start < 0 || len(values) == 0 || start+len(values) > holdingCount {
		return &mbserver.IllegalDataAddress
	}
	err := c.svc.Update(func(sc *simulator.Scenario) {
		for i, v := range values {
			setHolding(sc, start+i, v)
		}
	})
	if err != nil {
		c.log.Warn("write rejected", zap.Int("register", start), zap.Int("count", len(values)), zap.Error(err))
		return &mbserver.IllegalDataValue
	}
	return &mbserver.Success
}

func setHolding(sc *simulator.Scenario, addr int, value uint16) {
	switch addr {
	case RegSurface:
		sc.Surface = decodeScaled(value, SurfaceScale)
	case RegHeight:
		sc.Height = decodeScaled(value, TemperatureScale)
	case RegSetpoint:
		sc.Setpoint = decodeTemp(value)
	case RegInsulation:
		sc.Insulation = thermal.Insulation(value)
	case RegUnitType:
		sc.Unit = thermal.UnitType(value)
	}
}

func (c *Controller) holding(s planner.Snapshot) func(int) (uint16, bool) {
	sc := s.Scenario()
	return func(addr int) (uint16, bool) {
		switch addr {
		case RegSurface:
			return encodeScaled(sc.Surface, SurfaceScale), true
		case RegHeight:
			return encodeScaled(sc.Height, TemperatureScale), true
		case RegSetpoint:
			return encodeTemp(sc.Setpoint), true
		case RegInsulation:
			return uint16(sc.Insulation), true
		case RegUnitType:
			return uint16(sc.Unit), true
		default:
			return 0, false
		}
	}
}

func input(s planner.Snapshot) func(int) (uint16, bool) {
	c := s.Comparison
	return func(addr int) (uint16, bool) {
		if addr < summaryCount {
			switch addr {
			case RegBaselineKWh:
				return encodeScaled(c.Baseline.TotalKWh(), TemperatureScale), true
			case RegOptimizedKWh:
				return encodeScaled(c.Optimized.TotalKWh(), TemperatureScale), true
			case RegSavingsPercent:
				return encodeScaled(c.SavingsPercent(), TemperatureScale), true
			default:
				if c.Plan.Adopted {
					return 1, true
				}
				return 0, true
			}
		}

		var series []float64
		switch addr / hourBlock * hourBlock {
		case RegExteriorBase:
			series = c.Baseline.Exterior
		case RegBaselineInteriorBase:
			series = c.Baseline.Interior
		case RegOptimizedInteriorBase:
			series = c.Optimized.Interior
		default:
			return 0, false
		}
		h := addr % hourBlock
		if h >= len(series) {
			return 0, false
		}
		return encodeTemp(series[h]), true
	}
}

func readRegisters(frame mbserver.Framer, lookup func(int) (uint16, bool)) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := int(binary.BigEndian.Uint16(data[0:2]))
	qty := int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > 125 {
		return []byte{}, &mbserver.IllegalDataValue
	}

	byteCount := qty * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i := 0; i < qty; i++ {
		v, ok := lookup(start + i)
		if !ok {
			return []byte{}, &mbserver.IllegalDataAddress
		}
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], v)
	}
	return resp, &mbserver.Success
}

func encodeTemp(v float64) uint16 { return encodeScaled(v, TemperatureScale) }

func decodeTemp(u uint16) float64 { return decodeScaled(u, TemperatureScale) }

// encodeScaled stores v·scale as a saturating int16.
func encodeScaled(v float64, scale int) uint16 {
	r := min(max(int(math.Round(v*float64(scale))), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeScaled(u uint16, scale int) float64 {
	return float64(int16(u)) / float64(scale)
}
