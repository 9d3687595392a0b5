package model

type Identity struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type HabitLog struct {
	ID     string `json:"id" yaml:"id"`
	DayKey string `json:"dayKey" yaml:"day_key"`
	Status bool   `json:"status" yaml:"status"`
}

type Habit struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Frequency   Frequency  `json:"frequency" yaml:"frequency"`
	Logs        []HabitLog `json:"logs" yaml:"logs"`
	TodayStatus bool       `json:"todayStatus" yaml:"today_status"`
}

type NewHabit struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
}

type DailyStats struct {
	CompletedToday int     `json:"completedToday" yaml:"completed_today"`
	TotalHabits    int     `json:"totalHabits" yaml:"total_habits"`
	Percent        float64 `json:"percent" yaml:"percent"`
}

type WeeklyStat struct {
	Day     string  `json:"day" yaml:"day"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type MonthlyStat struct {
	Week    string  `json:"week" yaml:"week"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type Streak struct {
	CurrentStreak int `json:"currentStreak" yaml:"current_streak"`
	MaxStreak     int `json:"maxStreak" yaml:"max_streak"`
}

type ToggleResponse struct {
	Habit *Habit      `json:"habit"`
	Stats *DailyStats `json:"stats"`
}

type DietType string

const (
	DietBulking DietType = "bulking"
	DietCutting DietType = "cutting"
)

func (t DietType) Valid() bool {
	return t == DietBulking || t == DietCutting
}

type Period string

const (
	PeriodMorning Period = "morning"
	PeriodMidday  Period = "midday"
	PeriodNight   Period = "night"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodMorning, PeriodMidday, PeriodNight:
		return true
	}
	return false
}

type Food struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Grams       float64 `json:"grams" yaml:"grams"`
	Calories    float64 `json:"calories" yaml:"calories"`
	Protein     float64 `json:"protein" yaml:"protein"`
	Carbs       float64 `json:"carbs" yaml:"carbs"`
}

type NewFood struct {
	Description string  `json:"description"`
	Grams       float64 `json:"grams"`
	Calories    float64 `json:"calories,omitempty"`
	Protein     float64 `json:"protein,omitempty"`
	Carbs       float64 `json:"carbs,omitempty"`
}

type Diet struct {
	ID          string   `json:"id" yaml:"id"`
	Type        DietType `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Period      Period   `json:"period" yaml:"period"`
	DateKey     string   `json:"datekey" yaml:"datekey"`
	Foods       []Food   `json:"foods" yaml:"foods"`
	Calories    float64  `json:"calories" yaml:"calories"`
	Grams       float64  `json:"grams" yaml:"grams"`
}

type NewDiet struct {
	Type        DietType  `json:"type"`
	Description string    `json:"description,omitempty"`
	Period      Period    `json:"period"`
	DateKey     string    `json:"datekey"`
	Foods       []NewFood `json:"foods,omitempty"`
}

// DietResponse is the payload of GET /api/diet. GoalReached and Goal keep
// the backend's field names.
type DietResponse struct {
	Diets         []Diet  `json:"diets" yaml:"diets"`
	GoalReached   bool    `json:"atingiumeta" yaml:"goal_reached"`
	TotalCalories float64 `json:"totalCalories" yaml:"total_calories"`
	Goal          float64 `json:"meta" yaml:"goal"`
}

type DietProgress struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	Date       string  `json:"date" yaml:"date"`
	Calories   float64 `json:"calories" yaml:"calories"`
	Goal       float64 `json:"goal" yaml:"goal"`
	Achieved   bool    `json:"achieved" yaml:"achieved"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

type Genere string

const (
	GenereMasculine Genere = "masculine"
	GenereFeminine  Genere = "feminine"
)

func (g Genere) Valid() bool {
	return g == GenereMasculine || g == GenereFeminine
}

type PhysicalStatus struct {
	ID     string  `json:"id" yaml:"id"`
	Weight float64 `json:"weight" yaml:"weight"`
	Height float64 `json:"height" yaml:"height"`
	Age    int     `json:"age" yaml:"age"`
	Genere Genere  `json:"genere" yaml:"genere"`
	IMC    float64 `json:"imc" yaml:"imc"`
	TMB    float64 `json:"tmb" yaml:"tmb"`
}

type NewStatus struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Age    int     `json:"age"`
	Genere Genere  `json:"genere"`
	IMC    float64 `json:"imc"`
	TMB    float64 `json:"tmb"`
}

type WaterProgress struct {
	ID         string  `json:"id" yaml:"id"`
	Date       string  `json:"date" yaml:"date"`
	Water      float64 `json:"water" yaml:"water"`
	Goal       float64 `json:"goal" yaml:"goal"`
	Achieved   bool    `json:"achieved" yaml:"achieved"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

type WaterResponse struct {
	Today   *WaterProgress  `json:"today" yaml:"today"`
	History []WaterProgress `json:"history" yaml:"history"`
}
