package soil

import (
	"maps"
	"slices"
)

// Texture is a sand and clay fraction pair.
type Texture struct {
	Sand float64
	Clay float64
}

// Silt returns the remaining fraction.
func (t Texture) Silt() float64 { return 1 - t.Sand - t.Clay }

// DefaultTexture is returned for unknown KA5 codes in lenient lookups.
var DefaultTexture = Texture{Sand: 0.66, Clay: 0.0}

var ka5 = map[string]Texture{
	"fS":   {0.84, 0.02},
	"fSms": {0.86, 0.02},
	"fSgs": {0.88, 0.02},
	"gS":   {0.93, 0.02},
	"mSgs": {0.96, 0.02},
	"mSfs": {0.93, 0.02},
	"mS":   {0.96, 0.02},
	"Ss":   {0.93, 0.02},
	"Sl2":  {0.76, 0.06},
	"Sl3":  {0.65, 0.10},
	"Sl4":  {0.60, 0.14},
	"Slu":  {0.43, 0.12},
	"St2":  {0.84, 0.11},
	"St3":  {0.71, 0.21},
	"Su2":  {0.80, 0.02},
	"Su3":  {0.63, 0.04},
	"Su4":  {0.56, 0.04},
	"Ls2":  {0.34, 0.21},
	"Ls3":  {0.44, 0.21},
	"Ls4":  {0.56, 0.21},
	"Lt2":  {0.30, 0.30},
	"Lt3":  {0.20, 0.40},
	"Lts":  {0.42, 0.35},
	"Lu":   {0.19, 0.23},
	"Uu":   {0.10, 0.04},
	"Uls":  {0.30, 0.12},
	"Us":   {0.31, 0.04},
	"Ut2":  {0.13, 0.10},
	"Ut3":  {0.11, 0.14},
	"Ut4":  {0.09, 0.21},
	"Utl":  {0.19, 0.23},
	"Tt":   {0.17, 0.82},
	"Tl":   {0.17, 0.55},
	"Tu2":  {0.12, 0.55},
	"Tu3":  {0.10, 0.37},
	"Ts3":  {0.52, 0.40},
	"Ts2":  {0.37, 0.55},
	"Ts4":  {0.62, 0.30},
	"Tu4":  {0.05, 0.30},
	"L":    {0.35, 0.31},
	"S":    {0.93, 0.02},
	"U":    {0.10, 0.04},
	"T":    {0.17, 0.82},
	"HZ1":  {0.30, 0.15},
	"HZ2":  {0.30, 0.15},
	"HZ3":  {0.30, 0.15},
	"Hh":   {0.15, 0.10},
	"Hn":   {0.15, 0.10},
}

// KA5Texture returns the typical texture of a KA5 soil texture class code.
// Codes are case sensitive.
func KA5Texture(code string) (Texture, bool) {
	t, ok := ka5[code]

	return t, ok
}

// KA5Classes returns every known KA5 code in ascending order.
func KA5Classes() []string {
	return slices.Sorted(maps.Keys(ka5))
}

// ka5Rule matches when silt and clay are within the bounds. A zero bound is
// unchecked; the "Min" bounds are inclusive and the "Max" bounds exclusive.
type ka5Rule struct {
	code    string
	siltMin float64
	siltMax float64
	clayMin float64
	clayMax float64
}

// ka5Rules is evaluated in order; the first match wins.
var ka5Rules = []ka5Rule{
	{code: "Ss", siltMax: 0.10, clayMax: 0.05},
	{code: "Su2", siltMax: 0.25, clayMax: 0.05},
	{code: "Sl2", siltMax: 0.25, clayMax: 0.08},
	{code: "Su3", siltMax: 0.40, clayMax: 0.08},
	{code: "Su4", siltMax: 0.50, clayMax: 0.08},
	{code: "Us", siltMax: 0.80, clayMax: 0.08},
	{code: "Uu", siltMin: 0.80, clayMax: 0.08},
	{code: "St2", siltMax: 0.10, clayMax: 0.17},
	{code: "Sl3", siltMax: 0.40, clayMax: 0.12},
	{code: "Sl4", siltMax: 0.40, clayMax: 0.17},
	{code: "Slu", siltMax: 0.50, clayMax: 0.17},
	{code: "Uls", siltMax: 0.65, clayMax: 0.17},
	{code: "Ut2", siltMin: 0.65, clayMax: 0.12},
	{code: "Ut3", siltMin: 0.65, clayMax: 0.17},
	{code: "St3", siltMax: 0.15, clayMax: 0.25},
	{code: "Ls4", siltMax: 0.30, clayMax: 0.25},
	{code: "Ls3", siltMax: 0.40, clayMax: 0.25},
	{code: "Ls2", siltMax: 0.50, clayMax: 0.25},
	{code: "Lu", siltMax: 0.65, clayMax: 0.30},
	{code: "Ut4", siltMin: 0.65, clayMax: 0.25},
	{code: "Ts4", siltMax: 0.15, clayMax: 0.35},
	{code: "Lts", siltMax: 0.30, clayMax: 0.45},
	{code: "Lt2", siltMax: 0.50, clayMax: 0.35},
	{code: "Tu3", siltMax: 0.65, clayMax: 0.45},
	{code: "Tu4", siltMin: 0.65, clayMin: 0.25},
	{code: "Ts3", siltMax: 0.15, clayMax: 0.45},
	{code: "Lt3", siltMax: 0.50, clayMax: 0.45},
	{code: "Ts2", siltMax: 0.15, clayMax: 0.65},
	{code: "Tl", siltMax: 0.30, clayMax: 0.65},
	{code: "Tu2", siltMin: 0.30, clayMax: 0.65},
	{code: "Tt", clayMin: 0.65},
}

func (r ka5Rule) match(silt, clay float64) bool {
	switch {
	case r.siltMax != 0 && silt >= r.siltMax:
		return false
	case r.siltMin != 0 && silt < r.siltMin:
		return false
	case r.clayMax != 0 && clay >= r.clayMax:
		return false
	case r.clayMin != 0 && clay < r.clayMin:
		return false
	default:
		return true
	}
}

// SandAndClayToKA5 classifies a soil by its sand and clay fractions. It
// reports false for fractions outside [0, 1] or summing to more than 1.
func SandAndClayToKA5(sand, clay float64) (string, bool) {
	silt := Texture{Sand: sand, Clay: clay}.Silt()
	if sand < 0 || clay < 0 || sand > 1 || clay > 1 || silt < -1e-9 {
		return "", false
	}

	for _, r := range ka5Rules {
		if r.match(silt, clay) {
			return r.code, true
		}
	}

	return "", false
}
