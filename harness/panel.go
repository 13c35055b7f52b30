package harness

import (
	"zynqhal/core"
	"zynqhal/gpio"
)

// Action is what a button press asked the panel to do
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionStop
	ActionReset
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionReset:
		return "reset"
	case ActionQuit:
		return "quit"
	}
	return "none"
}

// Panel drives the timers from the board's buttons. The slide switches
// choose which timers a press applies to (switch n selects timer n; with no
// switch up, timer0). BTN0 starts, BTN1 stops, BTN2 resets; BTN3, or all four
// buttons held together, quits.
type Panel struct {
	timers   *core.IntervalTimers
	buttons  core.Buttons
	switches core.Switches
	last     uint32 // Button levels at the previous poll
}

// NewPanel creates a panel over the given inputs
func NewPanel(timers *core.IntervalTimers, buttons core.Buttons, switches core.Switches) *Panel {
	return &Panel{timers: timers, buttons: buttons, switches: switches}
}

// Init configures both input blocks
func (p *Panel) Init() error {
	if err := p.buttons.Init(); err != nil {
		return err
	}
	if err := p.switches.Init(); err != nil {
		return err
	}
	p.last = p.buttons.Read()
	return nil
}

// Selected returns the timers chosen by the switches
func (p *Panel) Selected() []core.TimerID {
	sw := p.switches.Read()
	var ids []core.TimerID
	for _, id := range core.AllTimers {
		if sw&(1<<uint(id)) != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ids = append(ids, core.Timer0)
	}
	return ids
}

// Poll reads the buttons once and acts on a newly pressed button. Only one
// action is taken per poll, lowest button first.
func (p *Panel) Poll() (Action, error) {
	levels := p.buttons.Read()
	pressed := levels &^ p.last
	p.last = levels

	if gpio.AllPressed(levels) {
		return ActionQuit, nil
	}

	var action Action
	switch {
	case pressed&gpio.Btn0 != 0:
		action = ActionStart
	case pressed&gpio.Btn1 != 0:
		action = ActionStop
	case pressed&gpio.Btn2 != 0:
		action = ActionReset
	case pressed&gpio.Btn3 != 0:
		return ActionQuit, nil
	default:
		return ActionNone, nil
	}

	for _, id := range p.Selected() {
		var err error
		switch action {
		case ActionStart:
			err = p.timers.Start(id)
		case ActionStop:
			err = p.timers.Stop(id)
		case ActionReset:
			err = p.timers.Reset(id)
		}
		if err != nil {
			return action, err
		}
	}
	return action, nil
}
