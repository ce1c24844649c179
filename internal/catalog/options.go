package catalog

// Option is one entry of a sidebar single-select filter. An empty Value
// is the "all" choice. Label is a message key resolved by the UI layer.
type Option struct {
	Value string
	Label string
}

// FilterGroup is the fixed option list offered for one filter key
type FilterGroup struct {
	Key     string
	Title   string
	Options []Option
}

// FilterGroups are the sidebar's single-select filters in display order
var FilterGroups = []FilterGroup{
	{
		Key:   KeyStatus,
		Title: "filter.status",
		Options: []Option{
			{Value: "", Label: "option.all"},
			{Value: "alive", Label: "status.alive"},
			{Value: "dead", Label: "status.dead"},
			{Value: "unknown", Label: "status.unknown"},
		},
	},
	{
		Key:   KeySpecies,
		Title: "filter.species",
		Options: []Option{
			{Value: "", Label: "option.all"},
			{Value: "human", Label: "species.human"},
			{Value: "alien", Label: "species.alien"},
			{Value: "humanoid", Label: "species.humanoid"},
			{Value: "poopybutthole", Label: "species.poopybutthole"},
			{Value: "mythological creature", Label: "species.mythological"},
			{Value: "animal", Label: "species.animal"},
			{Value: "robot", Label: "species.robot"},
			{Value: "cronenberg", Label: "species.cronenberg"},
			{Value: "disease", Label: "species.disease"},
		},
	},
	{
		Key:   KeyType,
		Title: "filter.type",
		Options: []Option{
			{Value: "", Label: "option.all"},
			{Value: "genetic experiment", Label: "type.genetic_experiment"},
			{Value: "superhuman", Label: "type.superhuman"},
			{Value: "parasite", Label: "type.parasite"},
			{Value: "clone", Label: "type.clone"},
			{Value: "antenna", Label: "type.antenna"},
			{Value: "god", Label: "type.god"},
			{Value: "demon", Label: "type.demon"},
		},
	},
	{
		Key:   KeyGender,
		Title: "filter.gender",
		Options: []Option{
			{Value: "", Label: "option.all"},
			{Value: "female", Label: "gender.female"},
			{Value: "male", Label: "gender.male"},
			{Value: "genderless", Label: "gender.genderless"},
			{Value: "unknown", Label: "gender.unknown"},
		},
	},
}

// OptionLabel returns the label key for value within the group, or
// the raw value when the option list does not contain it.
func (g FilterGroup) OptionLabel(value string) string {
	for _, o := range g.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
