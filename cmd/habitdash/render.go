package habitdash

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/service"
)

type dashboardTheme struct {
	title   lipgloss.Style
	header  lipgloss.Style
	faint   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	panel   lipgloss.Style
	barFull lipgloss.Style
}

// newDashboardTheme binds styles to out so a pipe or test buffer gets plain
// text and a terminal gets colors.
func newDashboardTheme(out io.Writer) dashboardTheme {
	r := lipgloss.NewRenderer(out)
	return dashboardTheme{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		header:  r.NewStyle().Bold(true),
		faint:   r.NewStyle().Foreground(lipgloss.Color("245")),
		good:    r.NewStyle().Foreground(lipgloss.Color("78")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(44),
		barFull: r.NewStyle().Foreground(lipgloss.Color("78")),
	}
}

func renderDashboard(out io.Writer, d service.Dashboard, weekly []model.WeeklyStat) {
	th := newDashboardTheme(out)

	habits := []string{th.header.Render("Habits")}
	habits = append(habits,
		fmt.Sprintf("Today   %s %d/%d", th.percentBar(d.Habits.DailyPercent, 20), d.Habits.CompletedToday, d.Habits.TotalHabits),
		fmt.Sprintf("Week    avg %d%%  %s", d.Habits.WeeklyAverage, th.faint.Render(weeklySparkline(weekly))),
		fmt.Sprintf("Month   avg %d%%", d.Habits.MonthlyAverage),
		fmt.Sprintf("Streak  %d (best %d)", d.Habits.Streak.CurrentStreak, d.Habits.Streak.MaxStreak),
	)
	for _, h := range d.Habits.Done {
		habits = append(habits, th.good.Render("[x] "+h.Title))
	}
	for _, h := range d.Habits.Pending {
		habits = append(habits, "[ ] "+h.Title)
	}

	diet := []string{th.header.Render("Diet")}
	if d.Diet.HasGoal {
		diet = append(diet,
			fmt.Sprintf("Today   %s %.0f/%.0f kcal", th.percentBar(dietPercent(d.Diet), 20), d.Diet.Calories, d.Diet.Goal),
			fmt.Sprintf("Weekly goal %.0f kcal", d.Diet.WeeklyGoal),
		)
		if d.Diet.Achieved {
			diet = append(diet, th.good.Render("Goal reached"))
		}
	} else {
		diet = append(diet, fmt.Sprintf("Today   %.0f kcal", d.Diet.Calories), th.faint.Render("No goal set"))
	}
	diet = append(diet, fmt.Sprintf("Meals   %d", d.Diet.Meals))

	water := []string{th.header.Render("Water")}
	if d.Water.Tracked {
		water = append(water, fmt.Sprintf("Today   %s %.0f/%.0f ml", th.percentBar(d.Water.Percentage, 20), d.Water.Water, d.Water.Goal))
	} else {
		water = append(water, th.faint.Render("Not tracked (record a status first)"))
	}

	body := []string{th.header.Render("Body")}
	if s := d.Body.Latest; s != nil {
		class := string(d.Body.Class)
		if d.Body.Class != service.BMINormal {
			class = th.warn.Render(class)
		}
		body = append(body,
			fmt.Sprintf("Weight  %.1f kg  Height %.2f m", s.Weight, s.Height),
			fmt.Sprintf("BMI     %.1f (%s)", s.IMC, class),
			fmt.Sprintf("BMR     %.0f kcal", s.TMB),
		)
	} else {
		body = append(body, th.faint.Render("No status recorded"))
	}

	left := lipgloss.JoinVertical(lipgloss.Left, th.panel.Render(strings.Join(habits, "\n")), th.panel.Render(strings.Join(body, "\n")))
	right := lipgloss.JoinVertical(lipgloss.Left, th.panel.Render(strings.Join(diet, "\n")), th.panel.Render(strings.Join(water, "\n")))
	fmt.Fprintln(out, th.title.Render("habitdash  "+d.Date))
	fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top, left, right))
}

func dietPercent(p service.DietPanel) float64 {
	if p.Percentage > 0 || p.Goal <= 0 {
		return p.Percentage
	}
	return p.Calories / p.Goal * 100
}

func (th dashboardTheme) percentBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	filled := int(math.Round(math.Min(percent, 100) / 100 * float64(width)))
	return th.barFull.Render(strings.Repeat("#", filled)) + th.faint.Render(strings.Repeat(".", width-filled))
}

func weeklySparkline(weekly []model.WeeklyStat) string {
	chars := []rune("._-~=*#@")
	var b strings.Builder
	for _, w := range weekly {
		idx := int(math.Round(math.Max(0, math.Min(w.Percent, 100)) / 100 * float64(len(chars)-1)))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
