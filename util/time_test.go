package util

import (
	"fmt"
	"time"
)

func ExampleNextRollover() {
	loc, _ := time.LoadLocation("Europe/Helsinki")
	// 23:30 local on Jan 1st (21:30 UTC)
	now := time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC)
	fmt.Println(NextRollover(now, loc, time.Minute).In(loc))
	// just after the offset, rolls to the following day
	now = time.Date(2024, 1, 1, 22, 2, 0, 0, time.UTC)
	fmt.Println(NextRollover(now, loc, time.Minute).In(loc))
	// the fall-back day is 25 hours long, the boundary stays at local
	// midnight rather than 24 hours later
	now = time.Date(2024, 10, 27, 0, 2, 0, 0, loc)
	fmt.Println(NextRollover(now, loc, time.Minute).In(loc))
	// the spring-forward day is 23 hours long
	now = time.Date(2024, 3, 31, 0, 2, 0, 0, loc)
	fmt.Println(NextRollover(now, loc, time.Minute).In(loc))
	// Output:
	// 2024-01-02 00:01:00 +0200 EET
	// 2024-01-03 00:01:00 +0200 EET
	// 2024-10-28 00:01:00 +0200 EET
	// 2024-04-01 00:01:00 +0300 EEST
}

func ExampleShortDuration() {
	d1, _ := time.ParseDuration("48h")
	d2, _ := time.ParseDuration("26.5h")
	d3, _ := time.ParseDuration("5h59m")
	d4, _ := time.ParseDuration("37m1s")
	d5, _ := time.ParseDuration("1500ms")
	d6, _ := time.ParseDuration("500ms")

	fmt.Println(ShortDuration(d1))
	fmt.Println(ShortDuration(d2))
	fmt.Println(ShortDuration(d3))
	fmt.Println(ShortDuration(d4))
	fmt.Println(ShortDuration(d5))
	fmt.Println(ShortDuration(d6))
	// Output:
	// 2d
	// 1d 2h
	// 5h 59m
	// 37m 1s
	// 1s
	// 500ms
}

func ExampleParseDuration() {
	d1, _ := ParseDuration("2d")
	d2, _ := ParseDuration("1w")
	d3, _ := ParseDuration("5m")
	_, err := ParseDuration("xyz")
	fmt.Println(d1)
	fmt.Println(d2)
	fmt.Println(d3)
	fmt.Println(err)
	// Output:
	// 48h0m0s
	// 168h0m0s
	// 5m0s
	// invalid duration
}
