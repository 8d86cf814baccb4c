// Package dashboard holds the mission-control dashboard state and the pure
// transitions applied to it: stepping through mission phases, completing
// missions and planning trade runs.
package dashboard

// StoryMission is a narrative mission the crew plays through phase by phase.
type StoryMission struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Difficulty  string   `json:"difficulty"`
	Locale      string   `json:"locale"`
	Hook        string   `json:"hook"`
	Description string   `json:"description"`
	Phases      []string `json:"phases"`
	Rewards     Rewards  `json:"rewards"`
}

// Rewards are paid out when the last phase is cleared.
type Rewards struct {
	Credits    int      `json:"credits"`
	Reputation int      `json:"reputation"`
	Items      []string `json:"items"`
}

// Item is one tag in the crew's cargo hold.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Rarity   string `json:"rarity"`
	Notes    string `json:"notes,omitempty"`
}

// Crew is the player's crew profile.
type Crew struct {
	CallSign  string   `json:"call_sign"`
	Captain   string   `json:"captain"`
	Ship      string   `json:"ship"`
	Specialty string   `json:"specialty"`
	Origins   string   `json:"origins"`
	Values    []string `json:"values"`
}

// LeaderboardEntry is one row of the dispatch leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Crew       string `json:"crew"`
	Reputation int    `json:"reputation"`
	LastRun    string `json:"last_run"`
}

// Route is a trade lane the crew can run.
type Route struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Distance    string `json:"distance"`
	Risk        string `json:"risk"`
	Opportunity string `json:"opportunity"`
}

// CargoOption is a cargo type that can be bought or sold on a run.
type CargoOption struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Rarity string `json:"rarity"`
	Notes  string `json:"notes"`
}

// Content is the static material the dashboard is built from.
type Content struct {
	Missions    []StoryMission     `json:"missions"`
	Inventory   []Item             `json:"-"`
	Crew        Crew               `json:"crew"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Routes      []Route            `json:"-"`
	Cargo       []CargoOption      `json:"-"`
}

// DefaultContent returns a fresh copy of the built-in dashboard material.
func DefaultContent() Content {
	return Content{
		Missions: []StoryMission{
			{
				ID:          "glass-tithe",
				Title:       "Le Dîme du Verre",
				Difficulty:  "Precarious",
				Locale:      "Les Verrières, sur la Loire Fendue",
				Hook:        "Slip past the Abbés du Soleil Noir to reclaim the Coalition des Lanternes' tithe before the salt fog reaches the kiln vaults.",
				Description: "Les Verrières depend on stained glass tithed to the Lantern Coalition to keep their watch-fires burning. When the Abbés seized the convoy, they hid the crates beneath the collapsed nave. Recover the tithe without igniting the powder-damp ruins.",
				Phases: []string{
					"Charm entry papers from the quartermaster at the Canal des Cendres.",
					"Shadow the abbé's beadledom through the nave and mark their patrol rhythm.",
					"Haul the glass crates through the crypt sluices before the rising fog curdles the air.",
					"Escort the wagon to the Lantern outpost on the ridge before dawn bells toll.",
				},
				Rewards: Rewards{Credits: 340, Reputation: 2, Items: []string{"Lantern Coalition writ", "Stained glass tithe"}},
			},
			{
				ID:          "salt-barge",
				Title:       "La Barge des Salines",
				Difficulty:  "Dire",
				Locale:      "Port-Royal des Brumes",
				Hook:        "Ferry contraband well-casks upriver to the Bastion d'Étain while evading Mirecourt corsairs prowling the drowned quays.",
				Description: "The Tin Bastion's cisterns are one bad week from running dry. The Bateliers de la Seine will pay handsomely if the cargo slips through Port-Royal without drawing the corsairs' swivel guns.",
				Phases: []string{
					"Coax the rusted paddlewheel back to life with salvaged boiler rivets.",
					"Bribe the Quai des Brumes lookouts to misreport your departure.",
					"Navigate the salt-warped shallows while the corsairs loose grapples from the fog.",
					"Trade the casks at the Bastion gates for coin and a pledge of future escorts.",
				},
				Rewards: Rewards{Credits: 560, Reputation: 3, Items: []string{"Bastion escort marker"}},
			},
			{
				ID:          "orchid-courier",
				Title:       "Message pour l'Orchidée",
				Difficulty:  "Bold",
				Locale:      "Citadelle de l'Orchidée Noire",
				Hook:        "Carry a truce charter between rival glassmaker guilds before the Ashen Choir convinces them to burn the greenhouses.",
				Description: "The Fraternité des Verriers will only parley if the Coureurs deliver the charter intact and prove the Lantern Coalition stands behind it. Every hour the Ashen Choir preaches, more apprentices take up torches.",
				Phases: []string{
					"Secure the charter seals within the Concordat archives at Montreuil.",
					"Ride the night stage through plague hamlets while ashfall drums the coach roof.",
					"Present the truce under the watch of the Orchidée matriarch and read the clauses aloud.",
					"Broker a joint vigil so the guild banners remain in the hall rather than on the pyres.",
				},
				Rewards: Rewards{Credits: 420, Reputation: 2, Items: []string{"Orchidée signet"}},
			},
		},
		Inventory: []Item{
			{ID: "lantern-maps", Name: "Cartes aux Lanternes", Quantity: 4, Rarity: "Rare", Notes: "Hand-inked routes noting every standing beacon between Port-Royal and Montreuil."},
			{ID: "telegraph-ciphers", Name: "Chiffres télégraphiques", Quantity: 6, Rarity: "Uncommon", Notes: "Copper plates for encoding dispatches along the shattered optical lines."},
			{ID: "mercury-poultice", Name: "Cataplasmes au mercure", Quantity: 9, Rarity: "Exotic", Notes: "Treats fog-burn lungs after a run through the salt marshes."},
		},
		Crew: Crew{
			CallSign:  "Courriers du Levant",
			Captain:   "Capitaine Éloise Marceau",
			Ship:      "Allège Sainte-Bernadette",
			Specialty: "Conductrice des canaux, l'esprit aussi affûté que son sabre-briquet.",
			Origins:   "Ancienne messagère impériale, rescapée des brasiers de la Seine, elle relie désormais les bastions alliés.",
			Values: []string{
				"La parole donnée vaut plus que l'or",
				"Protéger les phares de la Coalition des Lanternes",
				"Jamais abandonner un village aux brumes",
			},
		},
		Leaderboard: []LeaderboardEntry{
			{Rank: 1, Crew: "House Briar Couriers", Reputation: 18, LastRun: "Escorted the Dawnlight convoy"},
			{Rank: 2, Crew: "Velvet Signal", Reputation: 16, LastRun: "Intercepted Synod tax collectors"},
			{Rank: 3, Crew: "Caravan of Embers", Reputation: 15, LastRun: "Smuggled desal pods to Dawnmarket"},
		},
		Routes: []Route{
			{
				ID:          "canal-brume",
				Name:        "Canal des Brumes",
				Distance:    "2 jours",
				Risk:        "Patrouilles corsaires embusquées sous la brume salée",
				Opportunity: "Troquer des vivres séchés contre des briques de charbon à Port-Royal",
			},
			{
				ID:          "route-lanterne",
				Name:        "Route des Lanternes",
				Distance:    "3 jours",
				Risk:        "Postes de péage levés par les Abbés du Soleil Noir",
				Opportunity: "Gagner des faveurs en escortant les pèlerins jusqu'à la Citadelle d'Étain",
			},
			{
				ID:          "col-cendre",
				Name:        "Col des Cendres",
				Distance:    "4 jours",
				Risk:        "Éboulements et messagers de l'Ashen Choir qui sèment la panique",
				Opportunity: "Revendre du verre soufflé aux verriers de Montreuil à prix double",
			},
		},
		Cargo: []CargoOption{
			{ID: "silk", Label: "Shimmer-Silk", Rarity: "Exotic", Notes: "Bundles glow as they catch star-lantern light."},
			{ID: "seals", Label: "Charter Seals", Rarity: "Common", Notes: "Stamped contracts traded like currency in the fringe docks."},
			{ID: "maps", Label: "Ion-etched Sky Maps", Rarity: "Rare", Notes: "Predictive storm charts etched with plasma."},
		},
	}
}

// Mission returns the story mission with id.
func (c Content) Mission(id string) (StoryMission, bool) {
	for _, m := range c.Missions {
		if m.ID == id {
			return m, true
		}
	}
	return StoryMission{}, false
}

// Route returns the route with id.
func (c Content) Route(id string) (Route, bool) {
	for _, r := range c.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return Route{}, false
}

// CargoOption returns the cargo option with id.
func (c Content) CargoOption(id string) (CargoOption, bool) {
	for _, o := range c.Cargo {
		if o.ID == id {
			return o, true
		}
	}
	return CargoOption{}, false
}

// CargoIDs lists the cargo option ids in display order.
func (c Content) CargoIDs() []string {
	ids := make([]string, len(c.Cargo))
	for i, o := range c.Cargo {
		ids[i] = o.ID
	}
	return ids
}

// RouteIDs lists the route ids in display order.
func (c Content) RouteIDs() []string {
	ids := make([]string, len(c.Routes))
	for i, r := range c.Routes {
		ids[i] = r.ID
	}
	return ids
}
