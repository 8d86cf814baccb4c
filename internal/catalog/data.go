package catalog

import "time"

// DashboardWidget is the widget the MCP server advertises for the dashboard.
var DashboardWidget = Widget{
	ID:          "les-coureurs-control",
	Title:       "LES COUREURS Control",
	TemplateURI: "ui://widget/les-coureurs.html",
	Invoking:    "Compiling Les Coureurs telemetry",
	Invoked:     "Les Coureurs dashboard ready",
}

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func defaultMissions() []Mission {
	return []Mission{
		{
			ID:          "glass-tithe",
			Codename:    "Dîme du Verre",
			Summary:     "Slip through the shattered nave at Les Verrières and reclaim the Lantern Coalition's stained-glass tithe before the salt fog spoils it.",
			Status:      MissionActive,
			Priority:    PriorityHigh,
			Region:      "Les Verrières",
			Reward:      Reward{Credits: 340, Favors: []string{"Lantern safe-conduct"}},
			Window:      Window{Start: at("1848-10-21T04:30:00Z"), End: at("1848-10-21T23:00:00Z")},
			Specialists: []string{"Charretier Luc", "Sœur Alizée"},
			Tags:        []string{"recovery", "stealth"},
		},
		{
			ID:          "salt-barge",
			Codename:    "Barge des Salines",
			Summary:     "Ferry well-casks upriver from Port-Royal des Brumes to the Bastion d'Étain while Mirecourt corsairs stalk the fog banks.",
			Status:      MissionAvailable,
			Priority:    PriorityHigh,
			Region:      "Loire Brisée",
			Reward:      Reward{Credits: 560, Favors: []string{"Bastion escort marker"}},
			Window:      Window{Start: at("1848-10-24T18:00:00Z"), End: at("1848-10-25T07:00:00Z")},
			Specialists: []string{"Pilote Vinh", "Chaudronnière Mireille"},
			Tags:        []string{"escort", "logistics"},
		},
		{
			ID:          "orchid-charter",
			Codename:    "Charte de l'Orchidée",
			Summary:     "Carry a truce charter between rival glassmaker guilds before the Ashen Choir lights the Citadelle de l'Orchidée Noire ablaze.",
			Status:      MissionAvailable,
			Priority:    PriorityModerate,
			Region:      "Montreuil Bastion",
			Reward:      Reward{Credits: 420, Favors: []string{"Orchidée signet"}},
			Window:      Window{Start: at("1848-10-22T20:00:00Z"), End: at("1848-10-23T12:00:00Z")},
			Specialists: []string{"Archiviste Honoré", "Messagère Éloise"},
			Tags:        []string{"diplomacy", "parley"},
		},
		{
			ID:          "cinder-pass",
			Codename:    "Col des Cendres",
			Summary:     "Reopen the ash-choked pass to Montreuil by clearing fallen masonry and dispersing Ashen Choir agitators before the winter caravans arrive.",
			Status:      MissionCompleted,
			Priority:    PriorityModerate,
			Region:      "Haute-Bourgogne",
			Reward:      Reward{Credits: 310},
			Window:      Window{Start: at("1848-10-12T05:00:00Z"), End: at("1848-10-12T17:00:00Z")},
			Specialists: []string{"Piqueur Baptiste", "Veilleur Solenne"},
			Tags:        []string{"infrastructure", "security"},
		},
	}
}

func defaultInventory() []InventoryItem {
	return []InventoryItem{
		{
			ID:       "lantern-maps",
			Label:    "Cartes aux Lanternes",
			Category: "Cartographie",
			Status:   InventoryStaged,
			Quantity: 4,
			Unit:     "folios",
			Notes:    "Tracés mis à jour après l'éboulement du Col des Cendres",
		},
		{
			ID:       "telegraph-ciphers",
			Label:    "Chiffres télégraphiques",
			Category: "Communications",
			Status:   InventoryDeployed,
			Quantity: 6,
			Unit:     "plaques",
			Notes:    "Prêtés à la vigie de Port-Royal jusqu'à la fin de la semaine",
		},
		{
			ID:       "mercury-poultice",
			Label:    "Cataplasmes au mercure",
			Category: "Soins",
			Status:   InventoryStaged,
			Quantity: 9,
			Unit:     "rouleaux",
			Notes:    "Conserver au frais dans la glacière du bastion",
		},
		{
			ID:       "charter-seals",
			Label:    "Sceaux de charte",
			Category: "Diplomatie",
			Status:   InventoryMaintenance,
			Quantity: 7,
			Unit:     "étuis",
			Notes:    "Réencerclés avec de la cire d'abeille du Clos Saint-Brie",
		},
	}
}

func defaultTravel() []TravelCorridor {
	return []TravelCorridor{
		{
			ID:           "port-royal-to-bastion",
			Origin:       "Port-Royal des Brumes",
			Destination:  "Bastion d'Étain",
			Clearance:    ClearanceShadow,
			TypicalHours: 48,
			Bottlenecks:  []string{"Corsaires de Mirecourt", "Barrage flottant des Abbés"},
			Conveyance:   "Barge à aubes blindée",
		},
		{
			ID:           "montreuil-to-verrieres",
			Origin:       "Montreuil Bastion",
			Destination:  "Les Verrières",
			Clearance:    ClearanceExpress,
			TypicalHours: 36,
			Bottlenecks:  []string{"Pont effondré du Val d'Or", "Poste des Lanternes"},
			Conveyance:   "Diligence nocturne sous escorte",
		},
		{
			ID:           "citadelle-to-port-royal",
			Origin:       "Citadelle de l'Orchidée Noire",
			Destination:  "Port-Royal des Brumes",
			Clearance:    ClearanceStandard,
			TypicalHours: 72,
			Bottlenecks:  []string{"Prêches de la Chorale de Cendre", "Coulées de boue"},
			Conveyance:   "Caravane de mulets et gabarres",
		},
	}
}

// Default returns a fresh copy of the built-in data set.
func Default() *Catalog {
	return &Catalog{
		Missions:  defaultMissions(),
		Inventory: defaultInventory(),
		Travel:    defaultTravel(),
	}
}
