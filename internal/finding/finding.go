// Package finding 描述分析过程中观察到的证据
package finding

import (
	"fmt"
)

type Finding struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Address int    `json:"address"` // 指令所在pc
	Op      string `json:"op"`      // 触发的指令
}

func (f *Finding) String() string {
	ruleDescription := fmt.Sprintf("ID: %s\nTitle: %s\nDescription: %s\n",
		f.ID, f.Title, f.Description)
	ruleDescription = Colour(31, ruleDescription)

	location := fmt.Sprintf("At pc 0x%x: %s\n", f.Address, f.Op)
	location = Colour(33, location)

	return fmt.Sprintf("%s%s", ruleDescription, location)
}

func Colour(color int, str string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, str)
}
