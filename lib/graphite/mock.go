package graphite

import (
	"encoding/json"
	"fmt"
)

type MockGraphite struct {
	Points   []string
	Response string
}

func (self *MockGraphite) Add(path string, timestamp int64, value float64) error {
	self.Points = append(self.Points, fmt.Sprintf("%s %v %d", path, value, timestamp))
	return nil
}

func (self *MockGraphite) Flush() error {
	return nil
}

func (self *MockGraphite) Query(from, until, target string) ([]Dataseries, error) {
	var v []Dataseries
	err := json.Unmarshal([]byte(self.Response), &v)
	if err != nil {
		panic(err)
	}
	return v, nil
}
