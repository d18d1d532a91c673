package mocks

import "github.com/user/framedump/pkg/ports"

// Progress records the calls made on a ports.Progress.
type Progress struct {
	Total    int
	Started  int
	Advanced int
	Finished int
}

func (m *Progress) Start(total int) {
	m.Started++
	m.Total = total
}

func (m *Progress) Advance() {
	m.Advanced++
}

func (m *Progress) Finish() {
	m.Finished++
}

var _ ports.Progress = (*Progress)(nil)
