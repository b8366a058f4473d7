package dataset

import "maps"

// fallbackDisallowed is shipped with the binary and used whenever the remote
// definitions cannot be fetched or parsed.
var fallbackDisallowed = map[string]string{
	"ObsidianMC":                     "Obsidian",
	"genesis":                        "Genesis",
	"elux":                           "Elux",
	"VioletFreeUser":                 "Violet Free",
	"Hidden Menu":                    "Hidden",
	"void":                           "Void",
	"6XpyykmrCthKhFeUfkYGxv7xnXpoe2": "CCMV2",
	"cronos":                         "Cronos",
	"ORBIT":                          "Orbit (Weeb)",
	"Violet On Top":                  "Violet",
	"ElixirMenu":                     "Elixir",
	"Elixir":                         "Elixir",
	"VioletPaidUser":                 "Violet Paid",
	"EmoteWheel":                     "Emotes",
	"MistUser":                       "Mist",
	"Untitled":                       "Untitled",
	"void_menu_open":                 "Void",
	"dark":                           "ShibaGT Dark",
	"oblivionuser":                   "Oblivion",
	"eyerock reborn":                 "EyeRock",
	"asteroidlite":                   "Asteroid Lite",
	"cokecosmetics":                  "Coke Cosmetx",
	"ØƦƁƖƬ":                          "Orbit (Weeb)",
	"y u lookin in here weirdoooo":   "Malachi Menu Reborn",
	"Atlas":                          "Atlas",
	"Euphoric":                       "Euphoria",
	"CurrentEmote":                   "Vortex Emotes",
	"Explicit":                       "Explicit Menu",
}

var fallbackPermitted = map[string]string{
	"GFaces":                                    "GFaces",
	"github.com/maroon-shadow/SimpleBoards":     "Simple Boards",
	"github.com/ZlothY29IQ/GorillaMediaDisplay": "Gorilla Media Display",
	"GTrials":                                "GTrials",
	"github.com/ZlothY29IQ/TooMuchInfo":      "TMI Zlothy",
	"github.com/ZlothY29IQ/RoomUtils-IW":     "Room Utils",
	"github.com/ZlothY29IQ/MonkeClick":       "Monke Click",
	"github.com/ZlothY29IQ/MonkeClick-CI":    "Monke Click CI",
	"github.com/ZlothY29IQ/MonkeRealism":     "Monke Realism",
	"MediaPad":                               "Media Pad",
	"GorillaCinema":                          "GCinema",
	"FPS-Nametags for Zlothy":                "FPS Nametags",
	"ChainedTogetherActive":                  "Chained Together",
	"GPronouns":                              "GPronouns",
	"Fusioned":                               "Fusioned",
	"CSVersion":                              "Custom Skin",
	"github.com/ZlothY29IQ/Zloth-RecRoomRig": "Zlothy Body Estimation",
	"ShirtProperties":                        "GShirts Old",
	"GorillaShirts":                          "GShirts",
	"GS":                                     "Old GShirts",
	"HP_Left":                                "Holdable Pad",
	"GrateVersion":                           "Grate",
	"BananaOS":                               "BananaOS",
	"GC":                                     "GCraft",
	"CarName":                                "Vehicles",
	"MonkePhone":                             "Monke Phone",
	"Body Tracking":                          "Body Tracking",
	"GorillaWatch":                           "GWatch",
	"InfoWatch":                              "Info Watch",
	"Vivid":                                  "Vivid",
	"BananaPhone":                            "Banana Phone",
	"CustomMaterial":                         "Custom Cosmetics",
	"cheese is gouda":                        "WhoIsThatMonke",
	"WhoIsThatMonke":                         "WhoIsThatMonke Recode",
	"WhoIsThatMonke Version":                 "WhoIsThatMonke",
	"GorillaNametags":                        "GNametags",
	"DeeTags":                                "Dee Tags",
	"Boy Do I Love Information":              "BDILI",
	"NametagsPlusPlus":                       "Nametags++",
	"WalkSimulator":                          "WalkSim ZlothY Fix",
	"Dingus":                                 "dingus",
	"Graze Heath System":                     "Health System",
	"Gorilla Track Packed":                   "Gorilla Track",
	"drowsiiiGorillaInfoBoard":               "GInfo Board",
	"MonkeCosmetics::Material":               "Monke Cosmetics",
	"github.com/arielthemonke/GorillaCraftAutoBuilder": "GCraft Auto Builder",
	"usinggphys":                   "GPhys",
	"Gorilla Track 2.3.0":          "GTrack",
	"GorillaTorsoEstimator":        "Torso Estimation",
	"Body Estimation":              "HAN Body Estimation",
	"tictactoe":                    "TicTacToe",
	"ccolor":                       "Index",
	"chainedtogether":              "Chained Together",
	"goofywalkversion":             "Goofy Walk",
	"msp":                          "Monke Smart phone",
	"gorillastats":                 "Gorilla Stats",
	"monkehavocversion":            "Monke Havoc",
	"silliness":                    "Silliness",
	"BoyDoILoveInformation Public": "BDILI",
	"DTAOI":                        "DTAOI",
	"GorillaShop":                  "Gorilla Shop",
	"DTASLOI":                      "DTASLOI",
	"GorillaChatBox":               "Gorilla Chat Box",
}

// Fallback returns fresh copies of the embedded reference tables.
func Fallback() (disallowed, permitted map[string]string) {
	return maps.Clone(fallbackDisallowed), maps.Clone(fallbackPermitted)
}
