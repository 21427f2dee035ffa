package uci

import (
	"fmt"
	"strconv"
)

// Option is an engine setting published in the "uci" reply and written
// through setoption.
type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

func optionHeader(name, kind string) string {
	return fmt.Sprintf("option name %v type %v", name, kind)
}

// IntOption is a "spin" option. Values outside [Min, Max] are rejected
// rather than clamped, so a GUI typo never silently misconfigures the
// engine.
type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string {
	return opt.Name
}

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("%v default %v min %v max %v",
		optionHeader(opt.Name, "spin"), *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	var v, err = strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < opt.Min || v > opt.Max {
		return fmt.Errorf("option %v: value %v out of range [%v, %v]",
			opt.Name, v, opt.Min, opt.Max)
	}
	*opt.Value = v
	return nil
}

// BoolOption is a "check" option.
type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string {
	return opt.Name
}

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("%v default %v", optionHeader(opt.Name, "check"), *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	var v, err = strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*opt.Value = v
	return nil
}

type StringOption struct {
	Name  string
	Value *string
}

func (opt *StringOption) UciName() string {
	return opt.Name
}

func (opt *StringOption) UciString() string {
	return fmt.Sprintf("%v default %v", optionHeader(opt.Name, "string"), *opt.Value)
}

func (opt *StringOption) Set(s string) error {
	*opt.Value = s
	return nil
}
