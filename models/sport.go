package models

// SportType представляет вид спорта события, соответствующий ENUM в БД.
type SportType string

const (
	SportSoccer     SportType = "Soccer"
	SportBasketball SportType = "Basketball"
	SportTennis     SportType = "Tennis"
	SportBaseball   SportType = "Baseball"
	SportFootball   SportType = "Football"
	SportVolleyball SportType = "Volleyball"
	SportHockey     SportType = "Hockey"
	SportGolf       SportType = "Golf"
	SportCricket    SportType = "Cricket"
	SportRugby      SportType = "Rugby"
	SportOther      SportType = "Other"
)

// SportTypes lists every allowed sport type, in display order.
var SportTypes = []SportType{
	SportSoccer,
	SportBasketball,
	SportTennis,
	SportBaseball,
	SportFootball,
	SportVolleyball,
	SportHockey,
	SportGolf,
	SportCricket,
	SportRugby,
	SportOther,
}

func (s SportType) Valid() bool {
	for _, t := range SportTypes {
		if s == t {
			return true
		}
	}
	return false
}
